package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/compose"

	"github.com/swayam-agent/server/internal/agent/graph/conversations"
	"github.com/swayam-agent/server/internal/agent/graph/nodes"
	"github.com/swayam-agent/server/internal/agent/graph/observers"
	"github.com/swayam-agent/server/internal/agent/graph/tools"
	"github.com/swayam-agent/server/internal/agent/model"
	"github.com/swayam-agent/server/internal/agent/session"
	"github.com/swayam-agent/server/internal/lang"
	"github.com/swayam-agent/server/internal/search"
	"github.com/swayam-agent/server/internal/speech"
	logx "github.com/swayam-agent/server/pkg/logger"
)

// NoSpeechReply short-circuits a turn whose recording held no words.
const NoSpeechReply = "No speech detected"

// Runner executes one full voice turn: transcription, the pipeline graph,
// and the spoken result.
type Runner interface {
	ProcessVoice(ctx context.Context, sessionID string, audio []byte) (*model.TurnResult, error)
}

// Config holds everything needed to compose the turn pipeline end-to-end.
type Config struct {
	APIKey  string
	BaseURL string

	Planner      model.PlannerModelConfig
	Evaluator    model.EvaluatorModelConfig
	Persona      model.PersonaConfig
	Language     model.LanguageConfig
	Conversation model.ConversationConfig

	ConversationRepo model.ConversationRepository
	Memory           model.MemoryStore
	Speech           *speech.Client
	Gateway          *search.Gateway
	Sessions         *session.Manager
	FileRoot         string
}

// GraphConfig holds the constructed collaborators needed to build the graph
type GraphConfig struct {
	ChatModels      *nodes.ChatModels
	MessagesManager *conversations.MessagesManager
	Normalizer      *lang.Normalizer
	Speech          *speech.Client
	Gateway         *search.Gateway
	Persona         model.PersonaConfig
	Language        model.LanguageConfig
	ToolMaxLoops    int
	FileRoot        string
}

// GraphBuilder handles the construction of the turn pipeline graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.TurnInput, *model.TurnResult]
}

type graphRunner struct {
	runnable compose.Runnable[model.TurnInput, *model.TurnResult]
	speech   *speech.Client
	sessions *session.Manager
	pivot    string
}

func (r *graphRunner) ProcessVoice(ctx context.Context, sessionID string, audio []byte) (*model.TurnResult, error) {
	sess := r.sessions.Acquire(sessionID)
	unlock := sess.LockTurn()
	defer unlock()

	transcript, detectedLang, err := r.speech.Transcribe(ctx, audio, "unknown")
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	if strings.TrimSpace(transcript) == "" {
		logx.Debug().Str("session_id", sess.ID).Msg("No transcript; short-circuiting turn")
		return &model.TurnResult{SessionID: sess.ID, Reply: NoSpeechReply, DetectedLang: r.pivot}, nil
	}

	ctx = tools.WithSession(ctx, sess)
	out, err := r.runnable.Invoke(ctx, model.TurnInput{
		SessionID:    sess.ID,
		Transcript:   transcript,
		DetectedLang: detectedLang,
	}, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return nil, err
	}
	out.SessionID = sess.ID
	return out, nil
}

// BuildTurnGraph composes the chat models, messages manager and pipeline
// graph, and returns a Runner.
func BuildTurnGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}
	if cfg.Speech == nil {
		return nil, fmt.Errorf("speech client is nil")
	}
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("search gateway is nil")
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewManager()
	}

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:        cfg.APIKey,
		BaseURL:       cfg.BaseURL,
		PlannerConfig: &cfg.Planner,
		EvalConfig:    &cfg.Evaluator,
	})
	if err != nil {
		return nil, err
	}

	mm := conversations.NewMessagesManager(cfg.ConversationRepo, cfg.Memory, cfg.Conversation)
	normalizer := lang.NewNormalizer(cfg.Speech, cfg.Language.TranslateMaxChars)

	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:      cms,
		MessagesManager: mm,
		Normalizer:      normalizer,
		Speech:          cfg.Speech,
		Gateway:         cfg.Gateway,
		Persona:         cfg.Persona,
		Language:        cfg.Language,
		ToolMaxLoops:    cfg.Conversation.Tools.MaxLoops,
		FileRoot:        cfg.FileRoot,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Turn pipeline graph built successfully")
	return &graphRunner{
		runnable: runnable,
		speech:   cfg.Speech,
		sessions: cfg.Sessions,
		pivot:    cfg.Language.Pivot,
	}, nil
}

// BuildGraph constructs and returns the compiled turn pipeline graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.TurnInput, *model.TurnResult], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Planner == nil || config.ChatModels.Evaluator == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if config.Normalizer == nil {
		return nil, fmt.Errorf("language normalizer is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.TurnInput, *model.TurnResult](
			compose.WithGenLocalState(func(ctx context.Context) *model.TurnState {
				return &model.TurnState{Session: tools.SessionFromContext(ctx)}
			}),
		),
	}

	if err := builder.setupTools(ctx); err != nil {
		return nil, err
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// setupTools configures the business tools and binds them to the evaluator model
func (b *GraphBuilder) setupTools(ctx context.Context) error {
	businessTools := tools.GetQueryTools(tools.Deps{
		Gateway:  b.config.Gateway,
		FileRoot: b.config.FileRoot,
	})
	toolInfos, err := tools.GetToolInfos(ctx, businessTools)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to get tool infos")
		return fmt.Errorf("failed to get tool infos: %w", err)
	}

	if err := b.config.ChatModels.BindToolsToEvaluatorModel(ctx, toolInfos); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools to evaluator model")
		return fmt.Errorf("failed to bind tools to evaluator model: %w", err)
	}

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               businessTools,
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			// Hallucinated tool names degrade to a stable sentinel result
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", input).
				Msg("Unknown or invalid tool call; returning sentinel result")
			return tools.UnknownToolResult, nil
		},
		ToolArgumentsHandler: sanitizeToolArguments,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return fmt.Errorf("failed to create tools node: %w", err)
	}

	b.graph.AddToolsNode(nodes.NodeToolExecutor, toolsNode,
		compose.WithStatePreHandler(nodes.NewToolExecutorPreHandler(b.config.ToolMaxLoops)),
	)

	return nil
}

// sanitizeToolArguments best-effort normalizes model-produced arguments;
// it never fails hard.
func sanitizeToolArguments(ctx context.Context, name, arguments string) (string, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(arguments), &m); err != nil {
		// keep original if not JSON
		return arguments, nil
	}

	trimString := func(key string) {
		if v, ok := m[key]; ok {
			switch vv := v.(type) {
			case string:
				m[key] = strings.TrimSpace(vv)
			default:
				m[key] = strings.TrimSpace(fmt.Sprint(v))
			}
		}
	}

	switch name {
	case tools.ToolWebSearch, tools.ToolSequentialThink:
		trimString("query")
	case tools.ToolSchemeSearch:
		trimString("query")
		if v, ok := m["max_results"]; ok {
			switch vv := v.(type) {
			case float64:
				m["max_results"] = clampInt(int(vv), 1, 10)
			case string:
				if n, err := strconv.Atoi(strings.TrimSpace(vv)); err == nil {
					m["max_results"] = clampInt(n, 1, 10)
				} else {
					delete(m, "max_results")
				}
			default:
				delete(m, "max_results")
			}
		}
	case tools.ToolEligibilityCheck, tools.ToolBuildChecklist:
		trimString("scheme_id")
	case tools.ToolCreateFile, tools.ToolReadFile, tools.ToolUpdateFile, tools.ToolDeleteFile:
		trimString("path")
	}

	b, err := json.Marshal(m)
	if err != nil {
		return arguments, nil
	}
	return string(b), nil
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeNormalizer,
		nodes.NewNormalizerNode(b.config.MessagesManager, b.config.Normalizer, b.config.Persona, b.config.Language.Pivot),
		compose.WithStatePreHandler(nodes.NewNormalizerPreHandler()),
	)

	b.graph.AddChatModelNode(nodes.NodePlannerModel,
		b.config.ChatModels.Planner,
		compose.WithStatePostHandler(nodes.NewPlannerModelPostHandler(b.config.ChatModels.PlannerModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodePlanParser,
		nodes.NewPlanParserNode(),
		compose.WithStatePostHandler(nodes.NewPlanParserPostHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeDomainCheck,
		nodes.NewDomainCheckNode(b.config.Normalizer, b.config.Language.Pivot, b.config.Language.Catalog, 5),
		compose.WithStatePostHandler(nodes.NewDomainCheckPostHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeEvaluatorAssembler,
		nodes.NewEvaluatorAssemblerNode(b.config.MessagesManager, b.config.Persona),
	)

	b.graph.AddChatModelNode(nodes.NodeEvaluatorModel,
		b.config.ChatModels.Evaluator,
		compose.WithStatePreHandler(nodes.NewEvaluatorModelPreHandler(b.config.ToolMaxLoops)),
		compose.WithStatePostHandler(nodes.NewEvaluatorModelPostHandler(b.config.MessagesManager, b.config.ChatModels.EvaluatorModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeFinalizer,
		nodes.NewFinalizerNode(nodes.FinalizerDeps{
			Manager:     b.config.MessagesManager,
			Translator:  b.config.Normalizer,
			Synthesizer: b.config.Speech,
			PivotLang:   b.config.Language.Pivot,
		}),
	)
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeNormalizer},
		{nodes.NodeNormalizer, nodes.NodePlannerModel},
		{nodes.NodePlannerModel, nodes.NodePlanParser},
		{nodes.NodePlanParser, nodes.NodeDomainCheck},
		{nodes.NodeDomainCheck, nodes.NodeEvaluatorAssembler},
		{nodes.NodeEvaluatorAssembler, nodes.NodeEvaluatorModel},
		{nodes.NodeToolExecutor, nodes.NodeEvaluatorModel},
		{nodes.NodeFinalizer, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates the tool-loop branch after the evaluator model
func (b *GraphBuilder) addBranches() error {
	decisionBranch := compose.NewGraphBranch(
		nodes.NewToolExecutorCondition(),
		map[string]bool{
			nodes.NodeToolExecutor: true,
			nodes.NodeFinalizer:    true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeEvaluatorModel, decisionBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding decision branch")
		return fmt.Errorf("error adding decision branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.TurnInput, *model.TurnResult], error) {
	// Limit total run steps to avoid infinite loops in branching or tool retries
	maxSteps := 10 + b.config.ToolMaxLoops*2
	if maxSteps < 20 {
		maxSteps = 20
	}

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}

// clampInt returns v limited to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
