package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/swayam-agent/server/internal/agent/model"
	logx "github.com/swayam-agent/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey        string
	BaseURL       string
	PlannerConfig *model.PlannerModelConfig
	EvalConfig    *model.EvaluatorModelConfig
}

// ChatModels holds the Planner and Evaluator chat models
type ChatModels struct {
	Planner            *gemini.ChatModel
	Evaluator          *gemini.ChatModel
	PlannerModelName   string
	EvaluatorModelName string
}

// NewChatModels creates both Planner and Evaluator chat models with the given configuration
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	chatModelPlanner, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.PlannerConfig.Model,
		Temperature: &config.PlannerConfig.Temperature,
		MaxTokens:   &config.PlannerConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Planner model")
		return nil, fmt.Errorf("error creating Planner model: %w", err)
	}

	chatModelEvaluator, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.EvalConfig.Model,
		Temperature: &config.EvalConfig.Temperature,
		MaxTokens:   &config.EvalConfig.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  genai.Ptr(int32(2000)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Evaluator model")
		return nil, fmt.Errorf("error creating Evaluator model: %w", err)
	}

	return &ChatModels{
		Planner:            chatModelPlanner,
		Evaluator:          chatModelEvaluator,
		PlannerModelName:   config.PlannerConfig.Model,
		EvaluatorModelName: config.EvalConfig.Model,
	}, nil
}

// BindToolsToEvaluatorModel binds the business tools to the evaluator model
func (cm *ChatModels) BindToolsToEvaluatorModel(ctx context.Context, tools []*schema.ToolInfo) error {
	if err := cm.Evaluator.BindTools(tools); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools")
		return fmt.Errorf("failed to bind tools: %w", err)
	}

	logx.Debug().Msg("Successfully bound tools to evaluator model")
	return nil
}
