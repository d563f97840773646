package handlers

import "net/http"

// Authenticate kicks off the background provider login flow. The response
// returns immediately; the browser polls /api/auth-status to learn when
// the flow completes.
func Authenticate(w http.ResponseWriter, r *http.Request) {
	status := Manager.StartLogin(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"started":  status.Started,
		"message":  status.Message,
		"auth_url": status.AuthURL,
	})
}

// AuthStatus reports the live authentication state. Cheap enough to poll.
func AuthStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": Manager.IsAuthenticated(r.Context()),
		"in_progress":   Manager.AuthInProgress(),
	})
}
