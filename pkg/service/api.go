package service

import "github.com/prowheel/wheellab/pkg/model"

type (
	// CalcRequest describes a single wheel. Parts are either given directly
	// (Rim, Hub) or referenced by catalog label.
	CalcRequest struct {
		RimLabel string
		HubLabel string
		Rim      *model.RimSpec
		Hub      *model.HubSpec
		Lacing   model.LacingRequest
		// Archive stores complete results in the recipe archive.
		Archive bool
	}

	CalcResult struct {
		Rim     model.RimSpec
		Hub     model.HubSpec
		Lengths model.SpokeLengths
		// Missing lists the parts which could not be resolved.
		Missing []model.PartKind
		// Recipe is set if the result was archived.
		Recipe *model.UpsertResult
	}

	StageRequest struct {
		Customer   string
		Notes      string
		Front      CalcRequest
		Rear       *CalcRequest // nil for a single wheel
		Spoke      string
		Nipple     string
		SpokeCount int // 0 derives the count from the rims
	}
)

// Incomplete reports unresolved parts or missing geometry inputs.
func (r *CalcResult) Incomplete() bool {
	return len(r.Missing) > 0 || r.Lengths.IsIncomplete()
}
