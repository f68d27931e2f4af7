// Package spoke computes spoke lengths for conventional (J-bend) and
// straight-pull lacings.
package spoke

import (
	"math"

	"github.com/prowheel/wheellab/pkg/model"
)

// Params holds the inputs for a single side of a wheel.
type Params struct {
	ERD            float64 // effective rim diameter (mm)
	FlangeDiameter float64 // pitch circle diameter of the flange (mm)
	Offset         float64 // lateral hub center to flange offset (mm)
	Holes          int
	Crosses        int
	Type           model.LacingType
	HoleCorrection float64 // conventional only
	SPOffset       float64 // straight-pull calibration term (mm)
	SPRadius       float64 // straight-pull tangent radius override, 0 = flange radius
}

// Complete reports whether ERD, flange diameter and hole count are known.
func (p Params) Complete() bool {
	return p.ERD != 0 && p.FlangeDiameter != 0 && p.Holes != 0
}

// Solve returns the spoke length in mm rounded to one decimal.
// 0 is returned if the params are not complete. Use Complete to tell this
// apart from a degenerate geometry. The result is never negative.
func Solve(p Params) float64 {
	if !p.Complete() {
		return 0.0
	}
	var length float64
	if p.Type.IsStraightPull() {
		length = straightPull(p)
	} else {
		length = conventional(p)
	}
	return math.Max(0, round1(length))
}

// the rim hole, the flange hole and the wheel center form a spatial triangle
func conventional(p Params) float64 {
	rRim := p.ERD / 2
	rHub := p.FlangeDiameter / 2
	alpha := degToRad(float64(p.Crosses) * 720.0 / float64(p.Holes))
	sq := rRim*rRim + rHub*rHub + p.Offset*p.Offset - 2*rRim*rHub*math.Cos(alpha)
	return math.Sqrt(math.Max(0, sq)) - p.HoleCorrection/2
}

// a straight-pull spoke is tangent to a circle of radius r around the hub center
func straightPull(p Params) float64 {
	rRim := p.ERD / 2
	r := p.FlangeDiameter / 2
	if p.SPRadius > 0 {
		r = p.SPRadius
	}
	d := math.Sqrt(math.Max(0, rRim*rRim-r*r))
	return math.Sqrt(d*d+p.Offset*p.Offset) + p.SPOffset
}

// ParamsFor combines rim, hub side and lacing request into solver params.
// The hole count of the request takes precedence over the rim's.
func ParamsFor(rim model.RimSpec, side model.HubSide, req model.LacingRequest) Params {
	holes := req.Holes
	if holes == 0 {
		holes = rim.Holes
	}
	p := Params{
		ERD:            rim.ERD,
		FlangeDiameter: side.FlangeDiameter,
		Offset:         side.Offset,
		Holes:          holes,
		Crosses:        req.Crosses,
		Type:           req.Type,
	}
	if req.Type.IsStraightPull() {
		if side.SPOffset != nil {
			p.SPOffset = *side.SPOffset
		}
		p.SPRadius = side.SPRadius
	} else {
		p.HoleCorrection = req.HoleCorrection
	}
	return p
}

// SolveWheel evaluates both sides independently and applies the rounding mode.
// An uncalibrated straight-pull side is solved without calibration term.
func SolveWheel(rim model.RimSpec, hub model.HubSpec, req model.LacingRequest) model.SpokeLengths {
	left := ParamsFor(rim, hub.Left, req)
	right := ParamsFor(rim, hub.Right, req)
	return model.SpokeLengths{
		Left:     Round(Solve(left), req.Rounding),
		Right:    Round(Solve(right), req.Rounding),
		Complete: left.Complete() && right.Complete(),
	}
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
