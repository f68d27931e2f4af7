package model

import (
	"slices"
	"strings"
)

type (
	// Labeled is implemented by every catalog entry.
	Labeled interface {
		Label() string
	}

	RimSpec struct {
		Brand string  `yaml:"brand"`
		Model string  `yaml:"model"`
		ERD   float64 `yaml:"erd"`   // effective rim diameter (mm)
		Holes int     `yaml:"holes"` // positive even number
		Mass  float64 `yaml:"mass"`  // grams, 0 if unknown
	}

	// HubSide holds the geometry of one flange.
	HubSide struct {
		FlangeDiameter float64 `yaml:"pcd"`    // pitch circle diameter (mm)
		Offset         float64 `yaml:"offset"` // hub center to flange (mm)
		// SPOffset is the straight-pull calibration term added to the
		// tangent length (socket depth / seat geometry).
		// nil means not calibrated, an explicit 0 is a valid calibration.
		SPOffset *float64 `yaml:"spOffset,omitempty"`
		// SPRadius overrides the tangent circle radius for straight-pull hubs.
		// 0 means half of FlangeDiameter.
		SPRadius float64 `yaml:"spRadius"`
	}

	HubSpec struct {
		Brand string  `yaml:"brand"`
		Model string  `yaml:"model"`
		Mass  float64 `yaml:"mass"`
		Left  HubSide `yaml:"left"`
		Right HubSide `yaml:"right"`
	}

	SpokeSpec struct {
		Brand string  `yaml:"brand"`
		Model string  `yaml:"model"`
		Mass  float64 `yaml:"mass"` // unit mass (g)
	}

	NippleSpec struct {
		Brand string  `yaml:"brand"`
		Model string  `yaml:"model"`
		Mass  float64 `yaml:"mass"` // unit mass (g)
	}
)

var (
	_ Labeled = RimSpec{}
	_ Labeled = HubSpec{}
	_ Labeled = SpokeSpec{}
	_ Labeled = NippleSpec{}
)

func label(brand, model string) string {
	return strings.TrimSpace(strings.TrimSpace(brand) + " " + strings.TrimSpace(model))
}

func (r RimSpec) Label() string    { return label(r.Brand, r.Model) }
func (h HubSpec) Label() string    { return label(h.Brand, h.Model) }
func (s SpokeSpec) Label() string  { return label(s.Brand, s.Model) }
func (n NippleSpec) Label() string { return label(n.Brand, n.Model) }

// Side returns the flange geometry for the requested side.
func (h HubSpec) Side(s Side) HubSide {
	if s == SideRight {
		return h.Right
	}
	return h.Left
}

type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// PartKind identifies a catalog table.
type PartKind string

const (
	PartRim    PartKind = "rim"
	PartHub    PartKind = "hub"
	PartSpoke  PartKind = "spoke"
	PartNipple PartKind = "nipple"
)

var PartKinds = []PartKind{PartRim, PartHub, PartSpoke, PartNipple}

// ReplaceByLabel replaces the entry with the same label or appends item.
func ReplaceByLabel[T Labeled](items []T, item T) []T {
	idx := slices.IndexFunc(items, func(e T) bool { return e.Label() == item.Label() })
	if idx >= 0 {
		items[idx] = item
		return items
	}
	return append(items, item)
}
