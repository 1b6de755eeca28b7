package motion

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Float is a float64 that survives JSON round trips when non-finite. Finite
// values encode as numbers; NaN and infinities encode as the strings "NaN",
// "+Inf" and "-Inf". Decoding accepts either form, and numbers too large for a
// float64 decode as infinities.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (f *Float) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("motion: bad float %s: %w", s, err)
		}
		s = unq
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return fmt.Errorf("motion: bad float %s: %w", string(b), err)
	}
	*f = Float(v)
	return nil
}

type twistJSON struct {
	Linear  Float `json:"linear"`
	Angular Float `json:"angular"`
}

func (t Twist) MarshalJSON() ([]byte, error) {
	return json.Marshal(twistJSON{Linear: Float(t.Linear), Angular: Float(t.Angular)})
}

func (t *Twist) UnmarshalJSON(b []byte) error {
	w := twistJSON{Linear: Float(t.Linear), Angular: Float(t.Angular)}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*t = Twist{Linear: float64(w.Linear), Angular: float64(w.Angular)}
	return nil
}

type thrustJSON struct {
	Left  Float `json:"left"`
	Right Float `json:"right"`
}

func (th Thrust) MarshalJSON() ([]byte, error) {
	return json.Marshal(thrustJSON{Left: Float(th.Left), Right: Float(th.Right)})
}

func (th *Thrust) UnmarshalJSON(b []byte) error {
	w := thrustJSON{Left: Float(th.Left), Right: Float(th.Right)}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*th = Thrust{Left: float64(w.Left), Right: float64(w.Right)}
	return nil
}
