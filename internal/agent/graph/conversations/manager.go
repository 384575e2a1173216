package conversations

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/swayam-agent/server/internal/agent/model"
	logx "github.com/swayam-agent/server/pkg/logger"
)

// MessagesManager persists turns and builds model contexts from the stored
// history. History and memory are kept in the pivot language.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
	memory           model.MemoryStore
	maxTurns         int
	memoryTopK       int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, memory model.MemoryStore, config model.ConversationConfig) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
		memory:           memory,
		maxTurns:         config.History.MaxTurns,
		memoryTopK:       config.Memory.TopK,
	}
}

// RecordUserTurn saves the pivot-language user message for the session.
func (cm *MessagesManager) RecordUserTurn(ctx context.Context, sessionID, pivotText string) error {
	return cm.conversationRepo.AddMessage(ctx, sessionID, schema.UserMessage(pivotText))
}

// BuildEvaluatorContext assembles the evaluator's message list: the system
// prompt, retrieved memory when any, then the recent history which already
// ends with the current user message.
func (cm *MessagesManager) BuildEvaluatorContext(ctx context.Context, sessionID, systemPrompt, query string) ([]*schema.Message, error) {
	messages := []*schema.Message{schema.SystemMessage(systemPrompt)}

	if cm.memory != nil && cm.memoryTopK > 0 {
		recalled, err := cm.memory.Retrieve(ctx, sessionID, query, cm.memoryTopK)
		if err != nil {
			// memory is best-effort; a broken store must not kill the turn
			logx.Warn().Err(err).Str("session_id", sessionID).Msg("memory retrieval failed")
		} else if len(recalled) > 0 {
			messages = append(messages, schema.SystemMessage("Relevant past info: "+strings.Join(recalled, " ")))
		}
	}

	history, err := cm.conversationRepo.LoadHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	messages = append(messages, trimTail(history.Messages, cm.maxTurns)...)

	return messages, nil
}

// SaveResponse persists the assistant's pivot-language reply.
func (cm *MessagesManager) SaveResponse(ctx context.Context, sessionID, content string) error {
	return cm.conversationRepo.AddMessage(ctx, sessionID, schema.AssistantMessage(content, nil))
}

// PersistMemory stores one turn's exchange in the memory store.
func (cm *MessagesManager) PersistMemory(ctx context.Context, sessionID, userPivot, replyPivot string) error {
	if cm.memory == nil {
		return nil
	}
	return cm.memory.Store(ctx, sessionID, strings.TrimSpace(userPivot+" "+replyPivot))
}

// trimTail keeps the most recent maxTurns messages, copying so callers never
// alias the repository's slice.
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
