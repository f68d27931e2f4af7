package spoke

import (
	"math"

	"github.com/prowheel/wheellab/pkg/model"
)

// Round converts a raw length into a manufacturable length.
// 0 (incomplete input) stays 0.
func Round(length float64, mode model.RoundingMode) float64 {
	if length <= 0 {
		return 0
	}
	switch mode {
	case model.RoundEven:
		return math.Round(length/2) * 2
	case model.RoundOdd:
		return math.Round((length-1)/2)*2 + 1
	default:
		return round1(length)
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
