package diag

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/xosa/internal/monitoring"
)

// handleStream pushes every new report to the client as a JSON text message.
// Reports are polled, so a slow client sees the latest report rather than a
// backlog.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if !s.src.Reports.Valid() {
		writeJSONError(w, http.StatusServiceUnavailable, "no loop attached")
		return
	}
	_, last := s.src.Reports.Load()
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		monitoring.Logf("diag: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	// The client never sends anything useful; reading detects the close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-gone:
			return
		case <-s.quit:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(writeWait))
			return
		case <-ticker.C:
			rep, v := s.src.Reports.Load()
			if v == last {
				continue
			}
			last = v
			body, err := json.Marshal(rep)
			if err != nil {
				monitoring.Logf("diag: encode report %d: %v", rep.Tick, err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
				monitoring.Logf("diag: websocket write: %v", err)
				return
			}
		}
	}
}
