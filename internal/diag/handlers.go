package diag

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/san-kum/xosa/internal/history"
	"github.com/san-kum/xosa/internal/loop"
	"github.com/san-kum/xosa/internal/metrics"
	"github.com/san-kum/xosa/internal/motion"
	"github.com/san-kum/xosa/internal/transport"
	"github.com/san-kum/xosa/internal/tuning"
)

type HistoryResponse struct {
	Index   []int          `json:"index"`
	Linear  []motion.Float `json:"linear"`
	Angular []motion.Float `json:"angular"`
}

type StatsResponse struct {
	Samples int                     `json:"samples"`
	Linear  metrics.Summary         `json:"linear"`
	Angular metrics.Summary         `json:"angular"`
	Ringing *Ringing                `json:"ringing,omitempty"`
	Ingress *transport.IngressStats `json:"ingress,omitempty"`
}

// Ringing is the dominant oscillation frequency of each error axis.
type Ringing struct {
	LinearHz  float64 `json:"linear_hz"`
	AngularHz float64 `json:"angular_hz"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGains(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.src.Panel.GetParams())
	case http.MethodPut, http.MethodPost:
		s.putGains(w, r)
	default:
		w.Header().Set("Allow", "GET, PUT")
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// putGains accepts any subset of the parameters and applies them together.
func (s *Server) putGains(w http.ResponseWriter, r *http.Request) {
	var req map[string]float64
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return
	}

	v := s.src.Panel.Values()
	for name, val := range req {
		switch name {
		case tuning.KP:
			v.KP = val
		case tuning.KI:
			v.KI = val
		case tuning.KD:
			v.KD = val
		case tuning.MotorGain:
			v.MotorGain = val
		default:
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("%v: %q", tuning.ErrUnknownParam, name))
			return
		}
	}

	if err := s.src.Panel.Set(v); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, tuning.ErrOutOfRange) || errors.Is(err, tuning.ErrUnknownParam) {
			status = http.StatusBadRequest
		}
		writeJSONError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.src.Panel.GetParams())
}

func (s *Server) report() (loop.Report, bool) {
	if !s.src.Reports.Valid() {
		return loop.Report{}, false
	}
	return s.src.Reports.Read(), true
}

func (s *Server) snapshot() history.Snapshot {
	if !s.src.History.Valid() {
		return history.Snapshot{}
	}
	return s.src.History.Read()
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.report()
	if !ok {
		writeJSONError(w, http.StatusServiceUnavailable, "no loop attached")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	resp := HistoryResponse{
		Index:   make([]int, snap.Len()),
		Linear:  make([]motion.Float, len(snap.Linear)),
		Angular: make([]motion.Float, len(snap.Angular)),
	}
	for i, smp := range snap.Linear {
		resp.Index[i] = smp.Index
		resp.Linear[i] = motion.Float(smp.Value)
	}
	for i, smp := range snap.Angular {
		resp.Angular[i] = motion.Float(smp.Value)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	lin, ang := s.snapshot().Values()
	resp := StatsResponse{
		Samples: len(lin),
		Linear:  metrics.Summarize(lin),
		Angular: metrics.Summarize(ang),
	}
	if dt := s.src.Period.Seconds(); dt > 0 {
		lhz, _ := metrics.DominantFrequency(lin, dt)
		ahz, _ := metrics.DominantFrequency(ang, dt)
		resp.Ringing = &Ringing{LinearHz: lhz, AngularHz: ahz}
	}
	if s.src.Ingress != nil {
		st := s.src.Ingress()
		resp.Ingress = &st
	}
	writeJSON(w, http.StatusOK, resp)
}
