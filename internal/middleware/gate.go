package middleware

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ConsoleGate requires HTTP basic auth with the shared operator password
// when passwordHash (bcrypt) is non-empty. With an empty hash the gate is
// disabled and every request passes through.
func ConsoleGate(passwordHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if passwordHash == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, password, ok := r.BasicAuth()
			if !ok || bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="tunneldeck"`)
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication required"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
