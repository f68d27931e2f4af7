package model

import (
	"strings"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
)

const (
	BuildStatusRegistered = "registered"
)

// WheelRef references the rim and hub of one wheel by catalog label.
// A wheel without a rim reference is absent from the build.
type WheelRef struct {
	Rim     string
	Hub     string
	Lengths SpokeLengths
}

func (w WheelRef) Present() bool {
	return strings.TrimSpace(w.Rim) != ""
}

type BuildRecord struct {
	ID         uuid.UUID
	Customer   string
	Notes      string
	Status     string
	Front      WheelRef
	Rear       WheelRef
	Spoke      string
	Nipple     string
	SpokeCount int // 0 means derive from the rim hole count
	CreatedAt  time.Time
}

func (b *BuildRecord) IsWheelset() bool {
	return b.Front.Present() && b.Rear.Present()
}

// Wheel returns the wheel reference for front (true) or rear (false).
func (b *BuildRecord) Wheel(front bool) WheelRef {
	if front {
		return b.Front
	}
	return b.Rear
}

// WheelSpokeCount returns the number of spokes of a single wheel.
// A stored count of a wheelset covers both wheels and is split evenly.
func (b *BuildRecord) WheelSpokeCount(rimHoles int) int {
	if b.SpokeCount <= 0 {
		return rimHoles
	}
	if b.IsWheelset() {
		return b.SpokeCount / 2
	}
	return b.SpokeCount
}

// DefaultSpokeCount is the spoke count stored for a new build.
func DefaultSpokeCount(holes int, wheelset bool) int {
	if wheelset {
		return holes * 2
	}
	return holes
}

// BuildPatch carries a partial update of a build. Unset values are not changed.
type BuildPatch struct {
	Customer   omit.Val[string]
	Notes      omit.Val[string]
	Status     omit.Val[string]
	Front      omit.Val[WheelRef]
	Rear       omit.Val[WheelRef]
	Spoke      omit.Val[string]
	Nipple     omit.Val[string]
	SpokeCount omit.Val[int]
}

func (p *BuildPatch) IsEmpty() bool {
	return p.Customer.IsUnset() && p.Notes.IsUnset() && p.Status.IsUnset() &&
		p.Front.IsUnset() && p.Rear.IsUnset() && p.Spoke.IsUnset() &&
		p.Nipple.IsUnset() && p.SpokeCount.IsUnset()
}

//nolint:cyclop // one branch per field
func (p *BuildPatch) Apply(b *BuildRecord) {
	if v, ok := p.Customer.Get(); ok {
		b.Customer = v
	}
	if v, ok := p.Notes.Get(); ok {
		b.Notes = v
	}
	if v, ok := p.Status.Get(); ok {
		b.Status = v
	}
	if v, ok := p.Front.Get(); ok {
		b.Front = v
	}
	if v, ok := p.Rear.Get(); ok {
		b.Rear = v
	}
	if v, ok := p.Spoke.Get(); ok {
		b.Spoke = v
	}
	if v, ok := p.Nipple.Get(); ok {
		b.Nipple = v
	}
	if v, ok := p.SpokeCount.Get(); ok {
		b.SpokeCount = v
	}
}
