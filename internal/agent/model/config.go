package model

// ================ Config ================
type ConversationConfig struct {
	TTL     string `envconfig:"CONVERSATION_TTL" default:"24h"`
	History struct {
		MaxTurns int `envconfig:"CONVERSATION_HISTORY_MAX_TURNS" default:"10"`
	}
	Tools struct {
		// MaxLoops bounds the Evaluator's tool round trips per turn.
		MaxLoops int `envconfig:"CONVERSATION_TOOL_MAX_LOOPS" default:"5"`
	}
	Memory struct {
		TopK int `envconfig:"CONVERSATION_MEMORY_TOP_K" default:"3"`
	}
}

type PlannerModelConfig struct {
	Model       string  `envconfig:"PLANNER_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"PLANNER_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"PLANNER_TEMPERATURE" default:"0.1"`
}

type EvaluatorModelConfig struct {
	Model       string  `envconfig:"EVALUATOR_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"EVALUATOR_MAX_TOKENS" default:"3000"`
	Temperature float32 `envconfig:"EVALUATOR_TEMPERATURE" default:"0.4"`
}

type PersonaConfig struct {
	Name        string `envconfig:"PERSONA_NAME" default:"Swayam"`
	Description string `envconfig:"PERSONA_DESCRIPTION" default:"A patient, voice-first guide who helps rural citizens discover welfare schemes, check eligibility and prepare applications. Warm, concrete, never asks for OTPs or PINs."`
}

type LanguageConfig struct {
	// Pivot is the internal reasoning language; Catalog is the scheme
	// catalog's native language.
	Pivot             string `envconfig:"PIVOT_LANGUAGE" default:"en-IN"`
	Catalog           string `envconfig:"CATALOG_LANGUAGE" default:"mr-IN"`
	TranslateMaxChars int    `envconfig:"TRANSLATE_MAX_CHARS" default:"2000"`
}
