package transport

import (
	"encoding/json"
	"fmt"

	"github.com/san-kum/xosa/internal/motion"
)

// Vector3 is the wire form of a three-component vector.
type Vector3 struct {
	X motion.Float `json:"x"`
	Y motion.Float `json:"y"`
	Z motion.Float `json:"z"`
}

type twistMsg struct {
	Linear  Vector3 `json:"linear"`
	Angular Vector3 `json:"angular"`
}

type powerMsg struct {
	Data motion.Float `json:"data"`
}

// DecodeVector reads a measured velocity: x is forward speed, z is yaw rate.
func DecodeVector(b []byte) (motion.Twist, error) {
	var v Vector3
	if err := json.Unmarshal(b, &v); err != nil {
		return motion.Twist{}, fmt.Errorf("transport: decode vector: %w", err)
	}
	return motion.Twist{Linear: float64(v.X), Angular: float64(v.Z)}, nil
}

func EncodeVector(t motion.Twist) ([]byte, error) {
	return json.Marshal(Vector3{X: motion.Float(t.Linear), Z: motion.Float(t.Angular)})
}

// DecodeTwist reads a commanded velocity: linear.x and angular.z are used.
func DecodeTwist(b []byte) (motion.Twist, error) {
	var m twistMsg
	if err := json.Unmarshal(b, &m); err != nil {
		return motion.Twist{}, fmt.Errorf("transport: decode twist: %w", err)
	}
	return motion.Twist{Linear: float64(m.Linear.X), Angular: float64(m.Angular.Z)}, nil
}

func EncodeTwist(t motion.Twist) ([]byte, error) {
	return json.Marshal(twistMsg{
		Linear:  Vector3{X: motion.Float(t.Linear)},
		Angular: Vector3{Z: motion.Float(t.Angular)},
	})
}

func DecodePower(b []byte) (float64, error) {
	var m powerMsg
	if err := json.Unmarshal(b, &m); err != nil {
		return 0, fmt.Errorf("transport: decode power: %w", err)
	}
	return float64(m.Data), nil
}

func EncodePower(v float64) ([]byte, error) {
	return json.Marshal(powerMsg{Data: motion.Float(v)})
}
