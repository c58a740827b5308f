package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"languagecoach/internal/metrics"
	"languagecoach/internal/translate"
)

// TranslateHandler serves the word lookup API
type TranslateHandler struct {
	service *translate.Service
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

// NewTranslateHandler creates a new translate handler
func NewTranslateHandler(service *translate.Service, m *metrics.Metrics, log logrus.FieldLogger) *TranslateHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TranslateHandler{service: service, metrics: m, log: log}
}

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

type translateResponse struct {
	OK bool `json:"ok"`
	*translate.Result
}

// Translate looks a word or short phrase up in every course language
func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !decodeJSON(w, r, h.log, &req) {
		return
	}

	result, err := h.service.Translate(r.Context(), req.Text, req.Source)
	switch {
	case errors.Is(err, translate.ErrEmptyText):
		respondWithError(w, h.log, http.StatusBadRequest, `Missing "text"`, "", nil)
		return
	case errors.Is(err, translate.ErrTextTooLong):
		respondWithError(w, h.log, http.StatusBadRequest, fmt.Sprintf("Text too long (max %d chars)", translate.MaxTextLength), "", nil)
		return
	case err != nil:
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Error translating", err)
		return
	}

	h.metrics.TranslationServed(string(result.Provider), len(result.Warnings) > 0)
	respondWithJSON(w, http.StatusOK, translateResponse{OK: true, Result: result})
}
