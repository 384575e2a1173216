package lang

import (
	"context"
	"strings"

	logx "github.com/swayam-agent/server/pkg/logger"
)

// PivotCode is the single internal language all reasoning happens in. User
// input is normalised to it and final replies are translated back out of it.
const PivotCode = "en-IN"

// SupportedCodes lists the BCP-47 language codes the speech stack accepts.
var SupportedCodes = map[string]struct{}{
	"as-IN": {}, "bn-IN": {}, "brx-IN": {}, "doi-IN": {}, "en-IN": {},
	"gu-IN": {}, "hi-IN": {}, "kn-IN": {}, "kok-IN": {}, "ks-IN": {},
	"mai-IN": {}, "ml-IN": {}, "mni-IN": {}, "mr-IN": {}, "ne-IN": {},
	"od-IN": {}, "pa-IN": {}, "sa-IN": {}, "sat-IN": {}, "sd-IN": {},
	"ta-IN": {}, "te-IN": {}, "ur-IN": {},
}

// IsSupported reports whether code is a language the speech stack accepts.
func IsSupported(code string) bool {
	_, ok := SupportedCodes[code]
	return ok
}

// scriptRange maps a contiguous Unicode block to a fixed language code.
type scriptRange struct {
	lo, hi rune
	code   string
}

// Devanagari maps to mr-IN because the assistant persona and scheme catalog
// are Marathi.
var scriptRanges = []scriptRange{
	{0x0900, 0x097F, "mr-IN"}, // Devanagari
	{0x0980, 0x09FF, "bn-IN"}, // Bengali/Assamese
	{0x0A00, 0x0A7F, "pa-IN"}, // Gurmukhi
	{0x0A80, 0x0AFF, "gu-IN"}, // Gujarati
	{0x0B00, 0x0B7F, "od-IN"}, // Odia
	{0x0B80, 0x0BFF, "ta-IN"}, // Tamil
	{0x0C00, 0x0C7F, "te-IN"}, // Telugu
	{0x0C80, 0x0CFF, "kn-IN"}, // Kannada
	{0x0D00, 0x0D7F, "ml-IN"}, // Malayalam
	{0x0600, 0x06FF, "ur-IN"}, // Arabic/Urdu
}

// InferCode guesses a language code from the script of the first non-ASCII
// rune. ASCII-dominant text resolves to the pivot code.
func InferCode(text string) string {
	for _, r := range text {
		for _, sr := range scriptRanges {
			if r >= sr.lo && r <= sr.hi {
				return sr.code
			}
		}
	}
	return PivotCode
}

// Translator is the upstream translation call, limited to one chunk per call.
type Translator interface {
	TranslateChunk(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Normalizer performs boundary-safe chunked translation with lossless ordered
// reassembly on top of a single-chunk Translator.
type Normalizer struct {
	tr       Translator
	maxChars int
}

// DefaultMaxChars is the upstream translation input limit.
const DefaultMaxChars = 2000

func NewNormalizer(tr Translator, maxChars int) *Normalizer {
	if maxChars <= 0 || maxChars > DefaultMaxChars {
		maxChars = DefaultMaxChars
	}
	if maxChars < 200 {
		maxChars = 200
	}
	return &Normalizer{tr: tr, maxChars: maxChars}
}

// Translate translates text from sourceLang to targetLang, splitting it into
// boundary-safe chunks and rejoining the translated chunks with single spaces.
// Empty input returns an empty string without calling upstream. An "auto",
// "unknown" or empty source language is resolved with the script heuristic.
// Any chunk failure aborts the whole call; chunks are never silently skipped.
func (n *Normalizer) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if text == "" {
		return "", nil
	}

	switch strings.ToLower(strings.TrimSpace(sourceLang)) {
	case "auto", "unknown", "":
		sourceLang = InferCode(text)
	}

	parts := SplitChunks(text, n.maxChars)
	translated := make([]string, 0, len(parts))
	for i, part := range parts {
		logx.Debug().
			Int("chunk", i+1).
			Int("chunks", len(parts)).
			Int("chars", len(part)).
			Str("source", sourceLang).
			Str("target", targetLang).
			Msg("translating chunk")
		out, err := n.tr.TranslateChunk(ctx, part, sourceLang, targetLang)
		if err != nil {
			return "", err
		}
		if out != "" {
			translated = append(translated, out)
		}
	}
	return strings.TrimSpace(strings.Join(translated, " ")), nil
}
