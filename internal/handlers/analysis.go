package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"postpilot-backend/internal/ledger"
	"postpilot-backend/internal/models"
	"postpilot-backend/internal/platform"
	"postpilot-backend/internal/services"
)

type AnalysisHandler struct {
	analyzer *services.Analyzer
	ledger   *ledger.Client
	price    float64
}

func NewAnalysisHandler(analyzer *services.Analyzer, ledgerClient *ledger.Client, price float64) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		ledger:   ledgerClient,
		price:    price,
	}
}

// AnalyzeURL resolves a social-media URL into a normalized content record.
// The user is charged before the resolution starts; a fully failed
// resolution still produces a record, so the charge stands either way.
func (h *AnalysisHandler) AnalyzeURL(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(req.URL) == "" {
		fields["url"] = "url is required"
	}
	if req.UserID == 0 {
		fields["user_id"] = "user_id is required"
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	if h.ledger.Configured() {
		err := h.ledger.Debit(r.Context(), req.UserID, h.price, "URL analysis: "+req.URL)
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			writeJSON(w, http.StatusPaymentRequired, errorResp("INSUFFICIENT_BALANCE",
				fmt.Sprintf("Insufficient balance: %.2f required", h.price), r))
			return
		}
		if err != nil {
			log.Printf("[Analysis] ledger debit failed for user %d: %v", req.UserID, err)
			writeJSON(w, http.StatusBadGateway, errorResp("LEDGER_ERROR", "Balance service unavailable", r))
			return
		}
	}

	content, err := h.analyzer.Resolve(r.Context(), req.URL, req.Language)
	if errors.Is(err, services.ErrUnsupportedPlatform) {
		writeJSON(w, http.StatusBadRequest, errorResp("UNSUPPORTED_PLATFORM",
			"Unsupported URL. Supported platforms: "+strings.Join(platform.SupportedNames(), ", "), r))
		return
	}
	if err != nil {
		log.Printf("[Analysis] resolution failed for %s: %v", req.URL, err)
		writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_ERROR", "Content provider unavailable", r))
		return
	}

	// A fully failed resolution still yields a record; surface it with a
	// gateway status so callers can tell it apart from a degraded success.
	if !content.Success {
		writeJSON(w, http.StatusBadGateway, content)
		return
	}

	writeJSON(w, http.StatusOK, content)
}
