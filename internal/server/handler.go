package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/swayam-agent/server/internal/agent/graph"
	errx "github.com/swayam-agent/server/internal/core/error"
	logx "github.com/swayam-agent/server/pkg/logger"
)

type voiceHandler struct {
	runner        graph.Runner
	maxAudioBytes int64
}

// voiceResponse mirrors what the browser front end expects.
type voiceResponse struct {
	User     string `json:"user"`
	Response string `json:"response"`
	Audio    string `json:"audio"`
	Lang     string `json:"lang"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// sessionIDHeader carries the effective session id back to the client so a
// server-minted id can be reused on the next turn.
const sessionIDHeader = "X-Session-Id"

// handleProcessVoice accepts a multipart recording under the "audio" field
// and runs one full voice turn. The optional "session_id" field keeps
// profile and history continuity across turns; when it is omitted the minted
// id is echoed in the X-Session-Id header.
func (h *voiceHandler) handleProcessVoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxAudioBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No audio file")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, h.maxAudioBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio")
		return
	}
	if len(audio) == 0 {
		writeError(w, http.StatusBadRequest, "No audio file")
		return
	}

	sessionID := r.FormValue("session_id")

	result, err := h.runner.ProcessVoice(r.Context(), sessionID, audio)
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("voice turn failed")
		status := http.StatusInternalServerError
		var appErr *errx.AppError
		if errors.As(err, &appErr) && appErr.Status != 0 {
			status = appErr.Status
		}
		writeError(w, status, "failed to process voice query")
		return
	}

	if result.SessionID != "" {
		w.Header().Set(sessionIDHeader, result.SessionID)
	}
	writeJSON(w, http.StatusOK, voiceResponse{
		User:     result.Transcript,
		Response: result.Reply,
		Audio:    result.AudioBase64,
		Lang:     result.DetectedLang,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
