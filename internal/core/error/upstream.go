package errx

import "net/http"

// WrapUpstream maps a failed call to an external AI service (speech, translation,
// chat completion) to the unified AppError type.
func WrapUpstream(err error) *AppError {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, UpstreamErrorMessage)
}

// WrapTranslation marks a translation failure. Callers decide whether the
// failure is fatal for the turn or degrades to the untranslated text.
func WrapTranslation(err error) *AppError {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, TranslationErrorMessage)
}
