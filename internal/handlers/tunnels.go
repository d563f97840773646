package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// actionRequest is the operator's mutating request. Both form posts and
// JSON bodies are accepted; tunnel_name and name are interchangeable.
type actionRequest struct {
	Action     string `json:"action"`
	Name       string `json:"name"`
	TunnelName string `json:"tunnel_name"`
	Hostname   string `json:"hostname"`
}

func (a actionRequest) tunnelName() string {
	if a.TunnelName != "" {
		return a.TunnelName
	}
	return a.Name
}

func parseActionRequest(r *http.Request) (actionRequest, error) {
	var req actionRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return req, fmt.Errorf("invalid JSON body: %w", err)
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, fmt.Errorf("invalid form body: %w", err)
	}
	req.Action = r.PostFormValue("action")
	req.Name = r.PostFormValue("name")
	req.TunnelName = r.PostFormValue("tunnel_name")
	req.Hostname = r.PostFormValue("hostname")
	return req, nil
}

// ListTunnels returns the live tunnel inventory. Any failure (including
// being unauthenticated) degrades to an empty array, never an error page.
func ListTunnels(w http.ResponseWriter, r *http.Request) {
	tunnels := Manager.List(r.Context())
	writeJSON(w, http.StatusOK, tunnels)
}

// Action dispatches a {action, name, hostname} request to the matching
// tunnel operation.
func Action(w http.ResponseWriter, r *http.Request) {
	req, err := parseActionRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch req.Action {
	case "create":
		writeResult(w, Manager.Create(r.Context(), req.tunnelName()))
	case "delete":
		writeResult(w, Manager.Delete(r.Context(), req.tunnelName()))
	case "route":
		writeResult(w, Manager.RouteDNS(r.Context(), req.tunnelName(), req.Hostname))
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q: expected create, delete or route", req.Action))
	}
}

// CreateTunnel handles POST /api/create.
func CreateTunnel(w http.ResponseWriter, r *http.Request) {
	req, err := parseActionRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeResult(w, Manager.Create(r.Context(), req.tunnelName()))
}

// DeleteTunnel handles POST /api/delete.
func DeleteTunnel(w http.ResponseWriter, r *http.Request) {
	req, err := parseActionRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeResult(w, Manager.Delete(r.Context(), req.tunnelName()))
}

// RouteTunnel handles POST /api/route.
func RouteTunnel(w http.ResponseWriter, r *http.Request) {
	req, err := parseActionRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeResult(w, Manager.RouteDNS(r.Context(), req.tunnelName(), req.Hostname))
}
