package inspector

import (
	"fmt"
	"math"

	"github.com/pthm-cable/fluid/solver"
)

// CellProbe holds every field value at one point of the fluid.
type CellProbe struct {
	U          float32 `inspect:"label,fmt:%.3f"`
	V          float32 `inspect:"label,fmt:%.3f"`
	Speed      float32 `inspect:"bar,max:500,fmt:%.1f"`
	Direction  float32 `inspect:"angle"`
	VelocityX  float32 `inspect:"signed,max:500,fmt:%.1f,name:Vel X"`
	VelocityY  float32 `inspect:"signed,max:500,fmt:%.1f,name:Vel Y"`
	Density    float32 `inspect:"bar,max:1"`
	Red        float32 `inspect:"bar,max:1"`
	Green      float32 `inspect:"bar,max:1"`
	Blue       float32 `inspect:"bar,max:1"`
	Pressure   float32 `inspect:"signed,max:50,fmt:%.2f"`
	Divergence float32 `inspect:"signed,max:50,fmt:%.2f"`
	Curl       float32 `inspect:"signed,max:50,fmt:%.2f"`
}

// Probe samples every field of sim at the normalized point (u, v).
// Divergence and curl are the values from the last step.
func Probe(sim solver.Simulation, u, v float32) (CellProbe, error) {
	p := CellProbe{U: u, V: v}

	sample := func(q solver.Quantity) ([4]float32, error) {
		g, err := sim.Snapshot(q)
		if err != nil {
			return [4]float32{}, fmt.Errorf("probing field %d: %w", q, err)
		}
		return g.Sample(u, v), nil
	}

	vel, err := sample(solver.QuantityVelocity)
	if err != nil {
		return p, err
	}
	dye, err := sample(solver.QuantityDye)
	if err != nil {
		return p, err
	}
	pressure, err := sample(solver.QuantityPressure)
	if err != nil {
		return p, err
	}
	div, err := sample(solver.QuantityDivergence)
	if err != nil {
		return p, err
	}
	curl, err := sample(solver.QuantityCurl)
	if err != nil {
		return p, err
	}

	p.VelocityX, p.VelocityY = vel[0], vel[1]
	p.Speed = float32(math.Hypot(float64(vel[0]), float64(vel[1])))
	p.Direction = float32(math.Atan2(float64(vel[1]), float64(vel[0])))
	p.Red, p.Green, p.Blue, p.Density = dye[0], dye[1], dye[2], dye[3]
	p.Pressure = pressure[0]
	p.Divergence = div[0]
	p.Curl = curl[0]
	return p, nil
}
