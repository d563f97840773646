package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

const metricsPushInterval = 2 * time.Second

// GetMetrics returns one host metrics snapshot.
func GetMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Metrics.Collect(r.Context()))
}

// MetricsWS pushes a metrics snapshot to the dashboard every couple of
// seconds until the client goes away.
func MetricsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Printf("[metrics] failed to accept websocket: %v", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	ticker := time.NewTicker(metricsPushInterval)
	defer ticker.Stop()

	for {
		data, err := json.Marshal(Metrics.Collect(ctx))
		if err != nil {
			conn.Close(websocket.StatusInternalError, "marshal snapshot")
			return
		}

		writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = conn.Write(writeCtx, websocket.MessageText, data)
		cancel()
		if err != nil {
			return
		}

		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-ticker.C:
		}
	}
}
