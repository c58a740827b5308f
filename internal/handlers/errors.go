package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// errorResponse is the JSON body of every failed API call
type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func respondWithError(w http.ResponseWriter, log logrus.FieldLogger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.WithError(err).WithField("status", status).Warn(logMsg)
	}

	respondWithJSON(w, status, errorResponse{OK: false, Error: userMsg})
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondOK writes {"ok": true}
func respondOK(w http.ResponseWriter) {
	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// decodeJSON reads a bounded JSON body into v, answering 400 when it cannot
func decodeJSON(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondWithError(w, log, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return false
	}
	return true
}
