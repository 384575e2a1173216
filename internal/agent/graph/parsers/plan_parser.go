package parsers

import (
	"encoding/json"
	"strings"

	"github.com/swayam-agent/server/internal/agent/model"
	logx "github.com/swayam-agent/server/pkg/logger"
)

const maxContentLen = 128 * 1024

// ParsePlan decodes the planner's JSON output. Models often wrap JSON in
// markdown fences or lead with prose, so fences are stripped and the first
// top-level object is extracted before decoding. A nil return means the
// content held no usable plan; the caller substitutes the turn default.
func ParsePlan(content string) *model.Plan {
	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "plan_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("planner content truncated due to size limit")
		content = content[:maxContentLen]
	}

	raw := extractJSONObject(stripFences(content))
	if raw == "" {
		return nil
	}

	var p model.Plan
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		logx.Warn().Err(err).Str("component", "plan_parser").Msg("planner output is not valid JSON")
		return nil
	}
	if p.ExtractedProfile == nil {
		p.ExtractedProfile = map[string]string{}
	}
	if p.MissingFields == nil {
		p.MissingFields = []string{}
	}
	return &p
}

// DefaultPlan is the degraded plan for a turn whose planner output could not
// be parsed: no profile delta, and the raw transcript doubles as the search
// query so retrieval still has something to work with.
func DefaultPlan(transcript, detectedLang string) model.Plan {
	return model.Plan{
		ExtractedProfile: map[string]string{},
		Goal:             "",
		MissingFields:    []string{},
		SearchQuery:      transcript,
		ChosenLangCode:   detectedLang,
	}
}

// stripFences removes a leading/trailing markdown code fence pair when present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop an optional language tag on the fence line
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		first := strings.TrimSpace(s[:i])
		if first == "" || isFenceTag(first) {
			s = s[i+1:]
		}
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func isFenceTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// extractJSONObject returns the first balanced top-level {...} span in s,
// ignoring braces inside JSON strings.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
