package metrics

import (
	"encoding/json"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/xosa/internal/motion"
)

// Summary describes a series of error samples.
type Summary struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	RMS    float64 `json:"rms"`
	MaxAbs float64 `json:"max_abs"`
	P95Abs float64 `json:"p95_abs"`
}

// Summarize computes descriptive statistics of values. An empty series yields
// the zero Summary; a single sample has zero spread.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	s := Summary{N: n}
	if n == 1 {
		s.Mean = values[0]
	} else {
		s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	}
	s.RMS = floats.Norm(values, 2) / math.Sqrt(float64(n))

	abs := make([]float64, n)
	for i, v := range values {
		abs[i] = math.Abs(v)
	}
	sort.Float64s(abs)
	s.MaxAbs = abs[n-1]
	s.P95Abs = stat.Quantile(0.95, stat.Empirical, abs, nil)
	return s
}

type summaryJSON struct {
	N      int          `json:"n"`
	Mean   motion.Float `json:"mean"`
	StdDev motion.Float `json:"stddev"`
	RMS    motion.Float `json:"rms"`
	MaxAbs motion.Float `json:"max_abs"`
	P95Abs motion.Float `json:"p95_abs"`
}

// MarshalJSON keeps a summary of a series holding NaN or Inf encodable.
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(summaryJSON{
		N:      s.N,
		Mean:   motion.Float(s.Mean),
		StdDev: motion.Float(s.StdDev),
		RMS:    motion.Float(s.RMS),
		MaxAbs: motion.Float(s.MaxAbs),
		P95Abs: motion.Float(s.P95Abs),
	})
}

func (s *Summary) UnmarshalJSON(b []byte) error {
	var w summaryJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*s = Summary{
		N:      w.N,
		Mean:   float64(w.Mean),
		StdDev: float64(w.StdDev),
		RMS:    float64(w.RMS),
		MaxAbs: float64(w.MaxAbs),
		P95Abs: float64(w.P95Abs),
	}
	return nil
}
