package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"postpilot-backend/internal/models"
	"postpilot-backend/internal/services"
)

// 25 MB, matching the cap most voice-note sources stay under.
const maxAudioBytes = 25 << 20

type SpeechHandler struct {
	speech *services.SpeechService
}

func NewSpeechHandler(speech *services.SpeechService) *SpeechHandler {
	return &SpeechHandler{speech: speech}
}

// SpeechToText accepts a multipart "audio" file and returns its transcript.
func (h *SpeechHandler) SpeechToText(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid multipart form", r))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"audio": "audio file is required"}, r))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Failed to read audio file", r))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/ogg"
	}

	transcript, err := h.speech.Transcribe(r.Context(), audio, mimeType)
	if errors.Is(err, services.ErrSpeechNotConfigured) {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("NOT_CONFIGURED", "Speech recognition is not configured", r))
		return
	}
	if err != nil {
		log.Printf("[Speech] transcription failed for %s (%d bytes): %v", header.Filename, len(audio), err)
		writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_ERROR", "Transcription service unavailable", r))
		return
	}

	lang := r.FormValue("language")
	if lang == "" {
		lang = "auto"
	}
	writeJSON(w, http.StatusOK, models.SpeechResponse{Transcript: transcript, Language: lang})
}
