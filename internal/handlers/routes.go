package handlers

import (
	"net/http"

	"languagecoach/internal/security"
)

// RouterConfig gathers what the HTTP router serves
type RouterConfig struct {
	Progress   *ProgressHandler
	Middleware *Middleware
	// TTSLimiter rate limits /api/tts per client. Nil disables limiting.
	TTSLimiter *security.RateLimiter
	Health     http.Handler
	Metrics    http.Handler

	// Translate serves /api/translate when set.
	Translate        *TranslateHandler
	TranslateLimiter *security.RateLimiter
}

// NewRouter registers every route and wraps the mux with request logging
func NewRouter(rc RouterConfig) http.Handler {
	mux := http.NewServeMux()

	// Progress API
	mux.HandleFunc("POST /api/word_progress", rc.Progress.WordProgress)
	mux.HandleFunc("POST /api/complete", rc.Progress.Complete)
	mux.HandleFunc("POST /api/lesson_seen", rc.Progress.LessonSeen)
	mux.HandleFunc("GET /api/activity", rc.Progress.Activity)
	mux.HandleFunc("GET /api/due", rc.Progress.Due)
	mux.HandleFunc("GET /api/lessons", rc.Progress.Lessons)

	// Audio
	var tts http.Handler = http.HandlerFunc(rc.Progress.TTS)
	if rc.TTSLimiter != nil {
		tts = rc.TTSLimiter.Middleware(tts)
	}
	mux.Handle("GET /api/tts", tts)

	// Lookup
	if rc.Translate != nil {
		var translate http.Handler = http.HandlerFunc(rc.Translate.Translate)
		if rc.TranslateLimiter != nil {
			translate = rc.TranslateLimiter.Middleware(translate)
		}
		mux.Handle("POST /api/translate", translate)
	}

	// Operations
	if rc.Health != nil {
		mux.Handle("GET /healthz", rc.Health)
	}
	if rc.Metrics != nil {
		mux.Handle("GET /metrics", rc.Metrics)
	}

	if rc.Middleware == nil {
		return mux
	}
	return rc.Middleware.Logging(mux)
}
