package model

import (
	"github.com/cloudwego/eino/schema"

	"github.com/swayam-agent/server/internal/agent/session"
)

// TurnState stores per-invocation state for the pipeline graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex is required as long as it is never touched outside handlers.
type TurnState struct {
	Session *session.Session

	Transcript      string // as spoken
	TranscriptPivot string // normalised to the pivot language
	DetectedLang    string

	Plan   *Plan
	Review *DomainReview

	History          []*schema.Message // mutated only inside Eino state handlers
	ToolLoopCount    int               // maintained in handlers (reset/increment)
	ToolLimitReached bool              // set when the tool loop cap is exceeded
	ToolCallIDSeq    int               // synthesizes tool_call_id when the provider omits it

	// Accumulated total LLM cost (USD) across model invocations for this turn
	TotalCostUSD float64
}
