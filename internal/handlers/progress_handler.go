package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"languagecoach/internal/audio"
	"languagecoach/internal/metrics"
	"languagecoach/internal/models"
	"languagecoach/internal/progress"
	"languagecoach/internal/service"
	"languagecoach/internal/validation"
)

// ProgressHandler serves the progress and TTS API
type ProgressHandler struct {
	progressService *service.ProgressService
	ttsService      *audio.TTSService
	metrics         *metrics.Metrics
	log             logrus.FieldLogger
}

// NewProgressHandler creates a new progress handler. A nil ttsService
// disables /api/tts.
func NewProgressHandler(progressService *service.ProgressService, ttsService *audio.TTSService, m *metrics.Metrics, log logrus.FieldLogger) *ProgressHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ProgressHandler{
		progressService: progressService,
		ttsService:      ttsService,
		metrics:         m,
		log:             log,
	}
}

// dueResponse is the body of GET /api/due
type dueResponse struct {
	Language string                `json:"language"`
	Words    []models.WordProgress `json:"words"`
}

// WordProgress records one answered word
func (h *ProgressHandler) WordProgress(w http.ResponseWriter, r *http.Request) {
	var result progress.WordResult
	if !h.decode(w, r, &result) {
		return
	}
	result.Source = progress.Source(strings.ToLower(strings.TrimSpace(string(result.Source))))

	if _, err := h.progressService.RecordWord(r.Context(), result); err != nil {
		h.respondServiceError(w, "Error recording word progress", err)
		return
	}
	respondOK(w)
}

// Complete records a finished lesson quiz
func (h *ProgressHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var result progress.LessonResult
	if !h.decode(w, r, &result) {
		return
	}

	if _, err := h.progressService.CompleteLesson(r.Context(), result); err != nil {
		h.respondServiceError(w, "Error recording lesson completion", err)
		return
	}
	respondOK(w)
}

// LessonSeen marks a lesson as opened
func (h *ProgressHandler) LessonSeen(w http.ResponseWriter, r *http.Request) {
	var visit progress.LessonVisit
	if !h.decode(w, r, &visit) {
		return
	}

	if _, err := h.progressService.TouchLesson(r.Context(), visit); err != nil {
		h.respondServiceError(w, "Error recording lesson visit", err)
		return
	}
	respondOK(w)
}

// Activity returns today's XP, reviews and streak
func (h *ProgressHandler) Activity(w http.ResponseWriter, r *http.Request) {
	summary, err := h.progressService.ActivitySummary(r.Context())
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Error loading activity", err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// Due lists the words due for review in one language
func (h *ProgressHandler) Due(w http.ResponseWriter, r *http.Request) {
	language := r.URL.Query().Get("language")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, h.log, http.StatusBadRequest, "Invalid limit", "", nil)
			return
		}
		limit = n
	}

	words, err := h.progressService.DueWords(r.Context(), language, limit)
	if err != nil {
		h.respondServiceError(w, "Error loading due words", err)
		return
	}
	if words == nil {
		words = []models.WordProgress{}
	}
	respondWithJSON(w, http.StatusOK, dueResponse{Language: language, Words: words})
}

// Lessons lists lesson progress for one language
func (h *ProgressHandler) Lessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.progressService.Lessons(r.Context(), r.URL.Query().Get("language"))
	if err != nil {
		h.respondServiceError(w, "Error loading lessons", err)
		return
	}
	if lessons == nil {
		lessons = []models.LessonProgress{}
	}
	respondWithJSON(w, http.StatusOK, lessons)
}

// TTS serves a cached MP3 for the text and language in the query
func (h *ProgressHandler) TTS(w http.ResponseWriter, r *http.Request) {
	if h.ttsService == nil {
		http.Error(w, ErrTTSDisabled, http.StatusNotImplemented)
		return
	}

	req, err := audio.Prepare(r.URL.Query().Get("text"), r.URL.Query().Get("lang"))
	if err != nil {
		http.Error(w, ttsErrorMessage(err), http.StatusBadRequest)
		return
	}

	path, hit, err := h.ttsService.AudioFile(r.Context(), req)
	if err != nil {
		h.metrics.TTSServed("error")
		h.log.WithError(err).WithField("lang", req.Lang).Warn("TTS generation failed")
		http.Error(w, ErrTTSGenerationFailed, http.StatusBadGateway)
		return
	}
	if hit {
		h.metrics.TTSServed("hit")
	} else {
		h.metrics.TTSServed("miss")
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", ttsCacheControl)
	http.ServeFile(w, r, path)
}

func (h *ProgressHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	return decodeJSON(w, r, h.log, v)
}

// respondServiceError maps validation failures to 400 and anything else to 500
func (h *ProgressHandler) respondServiceError(w http.ResponseWriter, logMsg string, err error) {
	var ve validation.ValidationError
	if errors.As(err, &ve) {
		respondWithError(w, h.log, http.StatusBadRequest, ve.Error(), "", nil)
		return
	}
	respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
}

func ttsErrorMessage(err error) string {
	switch {
	case errors.Is(err, audio.ErrEmptyText):
		return `Missing "text"`
	case errors.Is(err, audio.ErrTextTooLong):
		return "Text too long (max 400 chars)"
	case errors.Is(err, audio.ErrUnsupportedLanguage):
		return "Unsupported language (use en-US, fr-FR, es-ES, bn-BD)"
	}
	return err.Error()
}

// Pinger reports whether a backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports liveness and database reachability
func Health(db Pinger, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				respondWithError(w, log, http.StatusServiceUnavailable, ErrDatabaseUnavailable, "Health check failed", err)
				return
			}
		}
		respondOK(w)
	}
}
