package vessel

import (
	"github.com/san-kum/xosa/internal/integrators"
	"github.com/san-kum/xosa/internal/motion"
)

// Pose is the vessel's planar position and heading in radians.
type Pose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// Plant integrates a Hull under applied thrust. It is not safe for concurrent use.
type Plant struct {
	hull    *Hull
	stepper integrators.Stepper
	x       integrators.State
	t       float64
}

func NewPlant(p Params, stepper integrators.Stepper) *Plant {
	if stepper == nil {
		stepper = integrators.NewRK4()
	}
	return &Plant{hull: NewHull(p), stepper: stepper, x: make(integrators.State, stateDim)}
}

// Step applies th for dt seconds and returns the resulting velocity.
func (p *Plant) Step(th motion.Thrust, dt float64) motion.Twist {
	if dt > 0 {
		p.x = p.stepper.Step(p.hull, p.x, []float64{th.Left, th.Right}, p.t, dt)
		p.t += dt
	}
	return p.Velocity()
}

// Velocity is surge speed and yaw rate, the measurement the controller tracks.
func (p *Plant) Velocity() motion.Twist {
	return motion.Twist{Linear: p.x[Surge], Angular: p.x[YawRate]}
}

func (p *Plant) Pose() Pose {
	return Pose{X: p.x[PosX], Y: p.x[PosY], Heading: p.x[Heading]}
}

func (p *Plant) Time() float64 { return p.t }

func (p *Plant) Hull() *Hull { return p.hull }

func (p *Plant) Reset() {
	p.x = make(integrators.State, stateDim)
	p.t = 0
}
