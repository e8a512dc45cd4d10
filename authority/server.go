package authority

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// Server exposes the authority over HTTP:
//
//	POST /v1/users/{id}/password-changed-at?timestamp=T   -> {"timestamp": confirmed}
//	POST /v1/users/{id}/validate-token?tokenIssuedAt=T    -> {"valid": bool}
//
// Both timestamps are whole Unix seconds; anything else is a 400.
type Server struct {
	store  *StampStore
	logger *slog.Logger
}

// NewServer wires a store into an HTTP surface. A nil logger falls back to
// slog.Default.
func NewServer(store *StampStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, logger: logger}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/users/{id}/password-changed-at", s.handleSetStamp)
	mux.HandleFunc("POST /v1/users/{id}/validate-token", s.handleValidateToken)
	return mux
}

func (s *Server) handleSetStamp(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	stamp, ok := parseSeconds(r.URL.Query().Get("timestamp"))
	if !ok || stamp <= 0 {
		writeError(w, http.StatusBadRequest, "timestamp must be positive whole seconds")
		return
	}

	confirmed, err := s.store.Set(r.Context(), userID, stamp)
	if err != nil {
		s.logger.Error("stamp write failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "stamp store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"timestamp": confirmed})
}

func (s *Server) handleValidateToken(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	issuedAt, ok := parseSeconds(r.URL.Query().Get("tokenIssuedAt"))
	if !ok || issuedAt <= 0 {
		writeError(w, http.StatusBadRequest, "tokenIssuedAt must be positive whole seconds")
		return
	}

	valid, err := s.store.Validate(r.Context(), userID, issuedAt)
	if err != nil {
		s.logger.Error("stamp read failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "stamp store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func parseSeconds(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
