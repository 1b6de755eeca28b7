package motion

import (
	"encoding/json"
	"math"
	"testing"
)

func TestFloatJSON(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{1.5, `1.5`},
		{math.NaN(), `"NaN"`},
		{math.Inf(1), `"+Inf"`},
		{math.Inf(-1), `"-Inf"`},
	}
	for _, tt := range tests {
		b, err := json.Marshal(Float(tt.v))
		if err != nil {
			t.Fatalf("Marshal(%v): %v", tt.v, err)
		}
		if string(b) != tt.want {
			t.Errorf("Marshal(%v) = %s, want %s", tt.v, b, tt.want)
		}
	}

	var f Float
	if err := json.Unmarshal([]byte(`1e999`), &f); err != nil || !math.IsInf(float64(f), 1) {
		t.Errorf("1e999 decoded as %v, %v", f, err)
	}
	if err := json.Unmarshal([]byte(`"fast"`), &f); err == nil {
		t.Error("expected error for a non-numeric string")
	}
}

func TestNonFiniteTwistJSON(t *testing.T) {
	b, err := json.Marshal(Twist{Linear: math.NaN(), Angular: 2})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"linear":"NaN","angular":2}` {
		t.Errorf("Marshal = %s", b)
	}
	var tw Twist
	if err := json.Unmarshal(b, &tw); err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(tw.Linear) || tw.Angular != 2 {
		t.Errorf("round trip = %+v", tw)
	}
}

func TestNonFiniteThrustJSON(t *testing.T) {
	b, err := json.Marshal(Thrust{Left: math.Inf(-1), Right: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"left":"-Inf","right":0.5}` {
		t.Errorf("Marshal = %s", b)
	}
	var th Thrust
	if err := json.Unmarshal(b, &th); err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(th.Left, -1) || th.Right != 0.5 {
		t.Errorf("round trip = %+v", th)
	}
}
