package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/swayam-agent/server/internal/agent/graph/conversations"
	"github.com/swayam-agent/server/internal/agent/graph/parsers"
	"github.com/swayam-agent/server/internal/agent/graph/prompts"
	"github.com/swayam-agent/server/internal/agent/model"
	"github.com/swayam-agent/server/internal/lang"
	"github.com/swayam-agent/server/internal/scheme"
	logx "github.com/swayam-agent/server/pkg/logger"
)

// Graph node names.
const (
	NodeNormalizer         = "Normalizer"
	NodePlannerModel       = "PlannerChatModel"
	NodePlanParser         = "PlanParser"
	NodeDomainCheck        = "DomainCheck"
	NodeEvaluatorAssembler = "EvaluatorAssembler"
	NodeEvaluatorModel     = "EvaluatorChatModel"
	NodeToolExecutor       = "ToolExecutor"
	NodeFinalizer          = "Finalizer"
)

// EmptyReplyFallback is spoken when the evaluator produced no content.
const EmptyReplyFallback = "Sorry, I could not generate an answer. Please repeat your question."

// Translator converts text between language codes, chunking long inputs.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Synthesizer turns text into base64 WAV audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, languageCode, speaker string) (string, error)
}

// NewNormalizerPreHandler resets per-turn state and captures the incoming
// transcript and language.
func NewNormalizerPreHandler() func(context.Context, model.TurnInput, *model.TurnState) (model.TurnInput, error) {
	return func(ctx context.Context, in model.TurnInput, s *model.TurnState) (model.TurnInput, error) {
		s.Transcript = in.Transcript
		code := strings.TrimSpace(in.DetectedLang)
		if !lang.IsSupported(code) {
			code = lang.PivotCode
		}
		s.DetectedLang = code

		// Reset tool loop counter and limit flag for each new turn
		s.ToolLoopCount = 0
		s.ToolLimitReached = false
		s.ToolCallIDSeq = 0
		// Reset accumulated total cost for each new turn
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewNormalizerNode creates the Normalizer node: it translates the spoken
// transcript into the pivot language, records the user turn, and assembles
// the planner's message list.
func NewNormalizerNode(
	mm *conversations.MessagesManager,
	tr Translator,
	persona model.PersonaConfig,
	pivot string,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.TurnInput) ([]*schema.Message, error) {
		var sessionID, detectedLang string
		var profile map[string]string
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.TurnState) error {
			if state.Session == nil {
				return fmt.Errorf("missing session in state")
			}
			sessionID = state.Session.ID
			detectedLang = state.DetectedLang
			profile = state.Session.Profile.Profile()
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		pivotText := input.Transcript
		if detectedLang != pivot {
			translated, terr := tr.Translate(ctx, input.Transcript, detectedLang, pivot)
			if terr != nil {
				// degrade to the raw transcript rather than losing the turn
				logx.Error().Err(terr).Str("session_id", sessionID).Msg("transcript translation failed; using raw transcript")
			} else {
				pivotText = translated
			}
		}

		err = compose.ProcessState(ctx, func(_ context.Context, state *model.TurnState) error {
			state.TranscriptPivot = pivotText
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		if err := mm.RecordUserTurn(ctx, sessionID, pivotText); err != nil {
			return nil, fmt.Errorf("record user turn: %w", err)
		}

		profileJSON, err := json.Marshal(profile)
		if err != nil {
			return nil, fmt.Errorf("marshal profile: %w", err)
		}

		systemPrompt, err := prompts.RenderPlannerSystem(ctx, persona, string(profileJSON))
		if err != nil {
			return nil, fmt.Errorf("render planner system prompt: %w", err)
		}

		return []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(pivotText),
		}, nil
	})
}

// NewPlannerModelPostHandler computes and logs usage cost for the planner model.
func NewPlannerModelPostHandler(modelName string) func(context.Context, *schema.Message, *model.TurnState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.TurnState) (*schema.Message, error) {
		accumulateUsageCost(out, state, modelName, NodePlannerModel)
		return out, nil
	}
}

// NewPlanParserNode creates the PlanParser node. Malformed planner output
// degrades to the default plan carrying the raw transcript.
func NewPlanParserNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, resp *schema.Message) (model.Plan, error) {
		var transcript, transcriptPivot, detectedLang string
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.TurnState) error {
			transcript = state.Transcript
			transcriptPivot = state.TranscriptPivot
			detectedLang = state.DetectedLang
			return nil
		})
		if err != nil {
			return model.Plan{}, fmt.Errorf("failed to access state: %w", err)
		}

		parsed := parsers.ParsePlan(resp.Content)
		if parsed == nil {
			logx.Warn().Msg("Planner output unusable; falling back to default plan")
			return parsers.DefaultPlan(transcript, detectedLang), nil
		}
		if strings.TrimSpace(parsed.SearchQuery) == "" {
			parsed.SearchQuery = transcriptPivot
		}
		if strings.TrimSpace(parsed.ChosenLangCode) == "" {
			parsed.ChosenLangCode = detectedLang
		}
		return *parsed, nil
	})
}

// NewPlanParserPostHandler merges the extracted profile delta into the
// session store and keeps the plan in state.
func NewPlanParserPostHandler() func(context.Context, model.Plan, *model.TurnState) (model.Plan, error) {
	return func(ctx context.Context, out model.Plan, state *model.TurnState) (model.Plan, error) {
		state.Plan = &out

		if state.Session == nil {
			return out, fmt.Errorf("missing session in state")
		}
		contradictions := state.Session.Profile.MergeDelta(out.ExtractedProfile)
		if len(contradictions) > 0 {
			logx.Warn().
				Str("session_id", state.Session.ID).
				Int("count", len(contradictions)).
				Msg("Profile contradictions recorded")
		}
		return out, nil
	}
}

// NewDomainCheckNode shortlists catalog schemes for the plan's search query
// and checks each against the stored profile.
func NewDomainCheckNode(tr Translator, pivot, catalogLang string, maxShortlist int) *compose.Lambda {
	if maxShortlist <= 0 {
		maxShortlist = 5
	}
	return compose.InvokableLambda(func(ctx context.Context, plan model.Plan) (model.DomainReview, error) {
		var sessionID string
		var profile map[string]string
		review := model.DomainReview{Plan: plan}
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.TurnState) error {
			if state.Session == nil {
				return fmt.Errorf("missing session in state")
			}
			sessionID = state.Session.ID
			profile = state.Session.Profile.Profile()
			review.Contradictions = state.Session.Profile.Contradictions(3)
			return nil
		})
		if err != nil {
			return model.DomainReview{}, fmt.Errorf("failed to access state: %w", err)
		}

		// catalog entries are Marathi, so translate the query before matching
		query := plan.SearchQuery
		if catalogLang != pivot {
			translated, terr := tr.Translate(ctx, query, pivot, catalogLang)
			if terr != nil {
				logx.Warn().Err(terr).Str("session_id", sessionID).Msg("catalog query translation failed; matching with pivot query")
			} else {
				query = translated
			}
		}

		shortlist := scheme.Search(query, maxShortlist)
		missingSet := map[string]struct{}{}
		for _, s := range shortlist {
			res := scheme.CheckEligibility(profile, s.ID)
			review.Checks = append(review.Checks, model.SchemeCheck{Scheme: s, Result: res})
			for _, m := range res.Missing {
				missingSet[m] = struct{}{}
			}
		}
		review.MissingFields = make([]string, 0, len(missingSet))
		for m := range missingSet {
			review.MissingFields = append(review.MissingFields, m)
		}
		sort.Strings(review.MissingFields)

		return review, nil
	})
}

// NewDomainCheckPostHandler keeps the review in state for later nodes.
func NewDomainCheckPostHandler() func(context.Context, model.DomainReview, *model.TurnState) (model.DomainReview, error) {
	return func(ctx context.Context, out model.DomainReview, state *model.TurnState) (model.DomainReview, error) {
		state.Review = &out
		return out, nil
	}
}

// NewEvaluatorAssemblerNode builds the evaluator's message list from the
// domain review, retrieved memory and recent history.
func NewEvaluatorAssemblerNode(
	mm *conversations.MessagesManager,
	persona model.PersonaConfig,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, review model.DomainReview) ([]*schema.Message, error) {
		var sessionID, transcriptPivot, userLang string
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.TurnState) error {
			if state.Session == nil {
				return fmt.Errorf("missing session in state")
			}
			sessionID = state.Session.ID
			transcriptPivot = state.TranscriptPivot
			userLang = state.DetectedLang
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		if lang.IsSupported(review.Plan.ChosenLangCode) {
			userLang = review.Plan.ChosenLangCode
		}

		systemPrompt, err := prompts.RenderEvaluatorSystem(ctx, persona, review, userLang)
		if err != nil {
			return nil, fmt.Errorf("render evaluator system prompt: %w", err)
		}

		messages, err := mm.BuildEvaluatorContext(ctx, sessionID, systemPrompt, transcriptPivot)
		if err != nil {
			return nil, fmt.Errorf("build evaluator context: %w", err)
		}
		return messages, nil
	})
}

// NewEvaluatorModelPreHandler creates the pre-handler for the evaluator model node.
func NewEvaluatorModelPreHandler(maxToolLoops int) func(context.Context, []*schema.Message, *model.TurnState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *model.TurnState) ([]*schema.Message, error) {
		// Heuristic fix for providers that drop tool_call_id on tool results
		if len(in) > 0 {
			last := in[len(in)-1]
			if last != nil && last.Role == schema.Tool && strings.TrimSpace(last.ToolCallID) == "" {
				for i := len(state.History) - 1; i >= 0; i-- {
					msg := state.History[i]
					if msg == nil || msg.Role != schema.Assistant || len(msg.ToolCalls) == 0 {
						continue
					}
					if id := msg.ToolCalls[0].ID; strings.TrimSpace(id) != "" {
						last.ToolCallID = id
					}
					break
				}
			}
		}

		state.History = append(state.History, in...)

		if checkAndMarkToolLimit(state, maxToolLoops) {
			maxToolLoops = normalizeMaxToolLoops(maxToolLoops)
			wrapUp := &schema.Message{
				Role: schema.System,
				Content: fmt.Sprintf(
					"SYSTEM NOTICE: You have reached the maximum tool call limit (%d). "+
						"Please synthesize a helpful response using the information you've already gathered. "+
						"Acknowledge any limitations in your response if you couldn't complete all necessary tool calls.",
					maxToolLoops,
				),
			}
			state.History = append(state.History, wrapUp)
		}

		return state.History, nil
	}
}

// NewEvaluatorModelPostHandler creates the post-handler for the evaluator model node.
func NewEvaluatorModelPostHandler(
	mm *conversations.MessagesManager,
	modelName string,
) func(context.Context, *schema.Message, *model.TurnState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.TurnState) (*schema.Message, error) {
		accumulateUsageCost(out, state, modelName, NodeEvaluatorModel)

		// Some providers omit tool_call IDs; synthesize stable local ones.
		if out != nil && len(out.ToolCalls) > 0 {
			for i := range out.ToolCalls {
				if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
					state.ToolCallIDSeq++
					out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.ToolCallIDSeq)
				}
			}
		}

		state.History = append(state.History, out)

		if len(out.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(out.ToolCalls)).Msg("Calling tools")
		} else {
			logx.Debug().Msg("Evaluator reply ready")
		}

		// Save only final assistant replies, or a content reply produced after
		// the tool loop cap.
		sessionID := ""
		if state.Session != nil {
			sessionID = state.Session.ID
		}
		if out.Role == schema.Assistant && (len(out.ToolCalls) == 0 || state.ToolLimitReached) && strings.TrimSpace(out.Content) != "" {
			if err := mm.SaveResponse(ctx, sessionID, out.Content); err != nil {
				logx.Error().Str("session_id", sessionID).Err(err).Msg("Error saving assistant reply")
			}
		}

		return out, nil
	}
}

// NewToolExecutorCondition routes to the tool executor when the evaluator
// requested tools and the loop cap was not hit.
func NewToolExecutorCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		var limitReached bool
		compose.ProcessState(ctx, func(_ context.Context, state *model.TurnState) error {
			limitReached = state.ToolLimitReached
			return nil
		})

		if limitReached {
			logx.Debug().Msg("Tool limit reached previously - routing to finalizer")
			return NodeFinalizer, nil
		}

		if len(input.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(input.ToolCalls)).Msg("Routing to ToolExecutor")
			return NodeToolExecutor, nil
		}

		return NodeFinalizer, nil
	}
}

// NewToolExecutorPreHandler counts tool round trips against the cap.
func NewToolExecutorPreHandler(maxToolLoops int) func(context.Context, *schema.Message, *model.TurnState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *model.TurnState) (*schema.Message, error) {
		exceeded := incrementToolLoopAndCheck(state, maxToolLoops)

		sessionID := ""
		if state.Session != nil {
			sessionID = state.Session.ID
		}
		logx.Debug().
			Int("tool_loop_count", state.ToolLoopCount).
			Str("session_id", sessionID).
			Msg("Tool execution attempt")

		if exceeded {
			logx.Warn().
				Int("tool_loop_count", state.ToolLoopCount).
				Int("max_tool_loops", normalizeMaxToolLoops(maxToolLoops)).
				Str("session_id", sessionID).
				Msg("Tool loop limit exceeded - flagging and continuing")
		}

		return in, nil
	}
}

// FinalizerDeps carries the collaborators the finalizer needs.
type FinalizerDeps struct {
	Manager     *conversations.MessagesManager
	Translator  Translator
	Synthesizer Synthesizer
	PivotLang   string
	Speaker     string
}

// memoryPersistTimeout bounds the fire-and-forget memory write.
const memoryPersistTimeout = 10 * time.Second

// NewFinalizerNode produces the TurnResult: empty-reply fallback,
// back-translation into the user's language, speech synthesis and the
// fire-and-forget memory write.
func NewFinalizerNode(deps FinalizerDeps) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, reply *schema.Message) (*model.TurnResult, error) {
		var sessionID, transcript, transcriptPivot, targetLang string
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.TurnState) error {
			if state.Session == nil {
				return fmt.Errorf("missing session in state")
			}
			sessionID = state.Session.ID
			transcript = state.Transcript
			transcriptPivot = state.TranscriptPivot
			targetLang = state.DetectedLang
			if state.Plan != nil && lang.IsSupported(state.Plan.ChosenLangCode) {
				targetLang = state.Plan.ChosenLangCode
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		replyPivot := ""
		if reply != nil {
			replyPivot = strings.TrimSpace(reply.Content)
		}
		if replyPivot == "" {
			replyPivot = EmptyReplyFallback
			// keep history consistent with what is actually spoken
			if err := deps.Manager.SaveResponse(ctx, sessionID, replyPivot); err != nil {
				logx.Error().Str("session_id", sessionID).Err(err).Msg("Error saving fallback reply")
			}
		}

		replyNative := replyPivot
		if targetLang != deps.PivotLang {
			translated, terr := deps.Translator.Translate(ctx, replyPivot, deps.PivotLang, targetLang)
			if terr != nil {
				logx.Error().Err(terr).Str("session_id", sessionID).Msg("reply translation failed; speaking pivot text")
			} else {
				replyNative = translated
			}
		}

		audio, serr := deps.Synthesizer.Synthesize(ctx, replyNative, targetLang, deps.Speaker)
		if serr != nil {
			logx.Error().Err(serr).Str("session_id", sessionID).Msg("speech synthesis failed; returning text only")
			audio = ""
		}

		// memory write must not delay or fail the reply
		go func() {
			bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), memoryPersistTimeout)
			defer cancel()
			if err := deps.Manager.PersistMemory(bgCtx, sessionID, transcriptPivot, replyPivot); err != nil {
				logx.Warn().Err(err).Str("session_id", sessionID).Msg("memory persist failed")
			}
		}()

		return &model.TurnResult{
			SessionID:    sessionID,
			Reply:        replyNative,
			ReplyPivot:   replyPivot,
			AudioBase64:  audio,
			Transcript:   transcript,
			DetectedLang: targetLang,
		}, nil
	})
}

// accumulateUsageCost attaches per-call cost to the message Extra and folds
// it into the running turn total.
func accumulateUsageCost(out *schema.Message, state *model.TurnState, modelName, node string) {
	if !model.CostEnabled() || out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	pricing := model.ResolvePricing(modelName)
	inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
	if out.Extra == nil {
		out.Extra = map[string]any{}
	}
	out.Extra["usage_cost"] = map[string]any{
		"currency":          "USD",
		"model":             modelName,
		"prompt_tokens":     out.ResponseMeta.Usage.PromptTokens,
		"completion_tokens": out.ResponseMeta.Usage.CompletionTokens,
		"total_tokens":      out.ResponseMeta.Usage.TotalTokens,
		"input_cost":        inC,
		"output_cost":       outC,
		"total_cost":        totalC,
	}
	sessionID := ""
	if state.Session != nil {
		sessionID = state.Session.ID
	}
	logx.Debug().
		Str("session_id", sessionID).
		Str("node", node).
		Str("model", modelName).
		Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
		Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
		Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", totalC).
		Msg("LLM usage")

	state.TotalCostUSD += totalC
	out.Extra["usage_cost_total_usd"] = state.TotalCostUSD
}
