// Package bom rolls the parts of a build up into wheel weights.
package bom

import (
	"github.com/samber/lo"

	"github.com/prowheel/wheellab/pkg/model"
)

// Lookups resolves part references. *catalog.Catalog implements it.
type Lookups interface {
	Rim(ref string) (model.RimSpec, bool)
	Hub(ref string) (model.HubSpec, bool)
	Spoke(ref string) (model.SpokeSpec, bool)
	Nipple(ref string) (model.NippleSpec, bool)
}

type (
	// Wheel is the weight breakdown of one wheel (grams).
	Wheel struct {
		Rim            string
		Hub            string
		RimMass        float64
		HubMass        float64
		SpokeCount     int
		SpokeUnitMass  float64
		NippleUnitMass float64
		Total          float64
		// Missing lists the parts which could not be resolved.
		// Their mass is counted as zero.
		Missing []model.PartKind
	}

	// Breakdown is the weight of a build. A nil wheel is absent from the build.
	Breakdown struct {
		Front *Wheel
		Rear  *Wheel
		Total float64
	}
)

func (w *Wheel) Incomplete() bool {
	return len(w.Missing) > 0
}

func (w *Wheel) SpokesMass() float64 {
	return float64(w.SpokeCount) * w.SpokeUnitMass
}

func (w *Wheel) NipplesMass() float64 {
	return float64(w.SpokeCount) * w.NippleUnitMass
}

// Incomplete is true if any present wheel has unresolved parts.
func (b *Breakdown) Incomplete() bool {
	return lo.SomeBy(b.Wheels(), func(w *Wheel) bool { return w.Incomplete() })
}

// Wheels returns the present wheels, front first.
func (b *Breakdown) Wheels() []*Wheel {
	return lo.Compact([]*Wheel{b.Front, b.Rear})
}

// Aggregate computes the weight breakdown of build.
// Unresolved parts never block the computation.
func Aggregate(build *model.BuildRecord, parts Lookups) Breakdown {
	var ret Breakdown
	if build.Front.Present() {
		ret.Front = aggregateWheel(build, build.Front, parts)
	}
	if build.Rear.Present() {
		ret.Rear = aggregateWheel(build, build.Rear, parts)
	}
	ret.Total = lo.SumBy(ret.Wheels(), func(w *Wheel) float64 { return w.Total })
	return ret
}

func aggregateWheel(build *model.BuildRecord, ref model.WheelRef, parts Lookups) *Wheel {
	w := &Wheel{Rim: ref.Rim, Hub: ref.Hub}

	rim, ok := parts.Rim(ref.Rim)
	if !ok {
		w.Missing = append(w.Missing, model.PartRim)
	}
	hub, ok := parts.Hub(ref.Hub)
	if !ok {
		w.Missing = append(w.Missing, model.PartHub)
	}
	spoke, ok := parts.Spoke(build.Spoke)
	if !ok {
		w.Missing = append(w.Missing, model.PartSpoke)
	}
	nipple, ok := parts.Nipple(build.Nipple)
	if !ok {
		w.Missing = append(w.Missing, model.PartNipple)
	}

	w.RimMass = rim.Mass
	w.HubMass = hub.Mass
	w.SpokeUnitMass = spoke.Mass
	w.NippleUnitMass = nipple.Mass
	w.SpokeCount = build.WheelSpokeCount(rim.Holes)
	w.Total = w.RimMass + w.HubMass +
		float64(w.SpokeCount)*(w.SpokeUnitMass+w.NippleUnitMass)
	return w
}
