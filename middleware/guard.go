package middleware

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	goTokenGate "github.com/MrEthical07/goTokenGate"
)

// Guard returns middleware that authenticates every request through the gate
// before invoking next. On success the identity is available via
// [goTokenGate.IdentityFromContext].
func Guard(gate *goTokenGate.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gate == nil {
				writeUnauthorized(w, goTokenGate.ErrGateNotReady)
				return
			}

			token, _ := bearerToken(r.Header.Get("Authorization"))

			ctx := goTokenGate.WithClientIP(r.Context(), clientIP(r))
			identity, err := gate.Authenticate(ctx, token)
			if err != nil {
				writeUnauthorized(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(goTokenGate.WithIdentity(ctx, identity)))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	msg := "unauthorized"
	switch {
	case errors.Is(err, goTokenGate.ErrMissingCredential):
		msg = goTokenGate.ErrMissingCredential.Error()
	case errors.Is(err, goTokenGate.ErrTokenExpired):
		msg = goTokenGate.ErrTokenExpired.Error()
	case errors.Is(err, goTokenGate.ErrTokenInvalidated):
		msg = goTokenGate.ErrTokenInvalidated.Error()
	case errors.Is(err, goTokenGate.ErrTokenInvalid):
		msg = goTokenGate.ErrTokenInvalid.Error()
	case errors.Is(err, goTokenGate.ErrUserLookup):
		msg = goTokenGate.ErrUserLookup.Error()
	}

	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
