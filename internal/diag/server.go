// Package diag serves the controller's diagnostics and tuning API over HTTP.
//
// Routes:
//
//	GET  /health        liveness
//	GET  /api/gains     current kp, ki, kd and motor_gain
//	PUT  /api/gains     set any subset of them, all or nothing
//	GET  /api/report    the last tick report
//	GET  /api/history   linear and angular error history
//	GET  /api/stats     summary statistics of the history and ingress counters
//	GET  /history       HTML chart of the error history
//	GET  /ws            websocket stream of tick reports
package diag

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/xosa/internal/history"
	"github.com/san-kum/xosa/internal/loop"
	"github.com/san-kum/xosa/internal/monitoring"
	"github.com/san-kum/xosa/internal/shared"
	"github.com/san-kum/xosa/internal/transport"
	"github.com/san-kum/xosa/internal/tuning"
)

const (
	DefaultStreamInterval = 100 * time.Millisecond
	shutdownTimeout       = 5 * time.Second
	writeWait             = time.Second
)

// Source is everything the server reads. Only Panel is required; Ingress may
// be nil when no ingress is running. Period is the loop period, used to turn
// history samples into frequencies.
type Source struct {
	Panel   *tuning.Panel
	Reports shared.Reader[loop.Report]
	History shared.Reader[history.Snapshot]
	Ingress func() transport.IngressStats
	Period  time.Duration
}

type Server struct {
	address  string
	src      Source
	interval time.Duration
	upgrader websocket.Upgrader
	server   *http.Server

	quit     chan struct{}
	quitOnce sync.Once
}

func NewServer(address string, src Source) *Server {
	s := &Server{
		address:  address,
		src:      src,
		interval: DefaultStreamInterval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		quit: make(chan struct{}),
	}
	s.server = &http.Server{
		Addr:              address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// SetStreamInterval sets how often /ws polls for a new report.
func (s *Server) SetStreamInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/gains", s.handleGains)
	mux.HandleFunc("/api/report", s.handleReport)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/history", s.handleHistoryChart)
	mux.HandleFunc("/ws", s.handleStream)
	return mux
}

// Start listens on the configured address and serves until ctx is cancelled,
// then shuts the server down. A bind failure is returned immediately.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		monitoring.Logf("diag: listening on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		s.Close()
		return err
	}

	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Close ends every open report stream.
func (s *Server) Close() {
	s.quitOnce.Do(func() { close(s.quit) })
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
