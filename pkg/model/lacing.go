package model

import (
	"fmt"
	"strings"
)

type LacingType int

const (
	LacingConventional LacingType = iota // J-bend
	LacingStraightPull
)

func (l LacingType) String() string {
	if l == LacingStraightPull {
		return "straight-pull"
	}
	return "conventional"
}

func (l LacingType) IsStraightPull() bool {
	return l == LacingStraightPull
}

func ParseLacingType(s string) (LacingType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "conventional", "j-bend", "jbend", "j":
		return LacingConventional, nil
	case "straight-pull", "straightpull", "sp":
		return LacingStraightPull, nil
	}
	return LacingConventional, fmt.Errorf("lacing type %q: %w", s, ErrInvalidInput)
}

type RoundingMode int

const (
	RoundNone RoundingMode = iota
	RoundEven
	RoundOdd
)

func (r RoundingMode) String() string {
	switch r {
	case RoundEven:
		return "even"
	case RoundOdd:
		return "odd"
	default:
		return "none"
	}
}

func ParseRoundingMode(s string) (RoundingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return RoundNone, nil
	case "even", "nearest-even":
		return RoundEven, nil
	case "odd", "nearest-odd":
		return RoundOdd, nil
	}
	return RoundNone, fmt.Errorf("rounding mode %q: %w", s, ErrInvalidInput)
}

// LacingRequest describes how a wheel is laced. It is evaluated per side.
type LacingRequest struct {
	Holes          int
	Crosses        int // 0..4
	Type           LacingType
	HoleCorrection float64 // mm, conventional lacing only
	Rounding       RoundingMode
}

func (r LacingRequest) Validate() error {
	if r.Crosses < 0 || r.Crosses > 4 {
		return fmt.Errorf("crosses %d out of range 0..4: %w", r.Crosses, ErrInvalidInput)
	}
	if r.Holes < 0 || r.Holes%2 != 0 {
		return fmt.Errorf("holes %d must be 0 (hole count of the rim) or a positive even number: %w",
			r.Holes, ErrInvalidInput)
	}
	return nil
}

// SpokeLengths holds the computed lengths for both sides of one wheel.
// Complete is set when both sides had all geometry inputs. A complete
// length of 0 is a real result (degenerate geometry).
type SpokeLengths struct {
	Left     float64 `yaml:"left"`
	Right    float64 `yaml:"right"`
	Complete bool    `yaml:"complete"`
}

func (s SpokeLengths) IsIncomplete() bool {
	return !s.Complete
}
