package handlers

const (
	SessionHeader = "X-Session-Id"

	// maxBodyBytes bounds a JSON report body.
	maxBodyBytes = 64 << 10

	ErrInvalidJSON         = "Invalid JSON body"
	ErrInternalServerError = "Internal server error"
	ErrDatabaseUnavailable = "Database unavailable"
	ErrTTSDisabled         = "TTS disabled (set TTS_PROVIDER=gtts or auto on the server)"
	ErrTTSGenerationFailed = "TTS generation failed"

	ttsCacheControl = "public, max-age=31536000, immutable"
)
