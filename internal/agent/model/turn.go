package model

import (
	"github.com/swayam-agent/server/internal/agent/session"
	"github.com/swayam-agent/server/internal/scheme"
)

// TurnInput is one normalised user turn entering the pipeline: the transcript
// as spoken plus the language the speech service detected.
type TurnInput struct {
	SessionID    string `json:"session_id"`
	Transcript   string `json:"transcript"`
	DetectedLang string `json:"detected_lang"`
}

// TurnResult is everything a turn hands back to the boundary layer.
// SessionID is the effective id, so clients that let the server mint one can
// still continue the session.
type TurnResult struct {
	SessionID    string `json:"session_id"`
	Reply        string `json:"reply"`
	ReplyPivot   string `json:"reply_pivot"`
	AudioBase64  string `json:"audio_base64"`
	Transcript   string `json:"transcript"`
	DetectedLang string `json:"detected_lang"`
}

// Plan is the Planner's structured output for a turn.
type Plan struct {
	ExtractedProfile map[string]string `json:"extracted_profile"`
	Goal             string            `json:"goal"`
	MissingFields    []string          `json:"missing_fields"`
	SearchQuery      string            `json:"search_query"`
	ChosenLangCode   string            `json:"chosen_language_code,omitempty"`
}

// SchemeCheck pairs a shortlisted scheme with its eligibility verdict.
type SchemeCheck struct {
	Scheme scheme.Scheme      `json:"scheme"`
	Result scheme.CheckResult `json:"result"`
}

// DomainReview is the DomainCheck stage's aggregate: the plan after the
// profile merge, the shortlist verdicts, the union of missing fields across
// shortlisted schemes and the recent contradiction log for the prompt.
type DomainReview struct {
	Plan           Plan                    `json:"plan"`
	Checks         []SchemeCheck           `json:"checks"`
	MissingFields  []string                `json:"missing_fields"`
	Contradictions []session.Contradiction `json:"contradictions"`
}
