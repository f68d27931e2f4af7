// Package basedata provides sample catalog data for tests.
package basedata

import (
	"context"
	"log"
	"time"

	"github.com/samber/lo"

	"github.com/prowheel/wheellab/pkg/model"
	"github.com/prowheel/wheellab/pkg/repository/api"
)

func TestTime() time.Time {
	t, _ := time.Parse(time.RFC3339, "2025-04-28T11:10:12Z")
	return t
}

func SampleRim() model.RimSpec {
	return model.RimSpec{Brand: "DT Swiss", Model: "RR 411", ERD: 601, Holes: 28, Mass: 380}
}

func SampleHub() model.HubSpec {
	return model.HubSpec{
		Brand: "DT Swiss",
		Model: "240s",
		Mass:  210,
		Left:  model.HubSide{FlangeDiameter: 40.8, Offset: 28.0},
		Right: model.HubSide{FlangeDiameter: 36.0, Offset: 40.2},
	}
}

func SampleStraightPullHub() model.HubSpec {
	return model.HubSpec{
		Brand: "DT Swiss",
		Model: "240 SP",
		Mass:  235,
		Left:  model.HubSide{FlangeDiameter: 40.8, Offset: 28.0, SPOffset: lo.ToPtr(1.7)},
		Right: model.HubSide{FlangeDiameter: 36.0, Offset: 40.2, SPOffset: lo.ToPtr(1.8)},
	}
}

func SampleSpoke() model.SpokeSpec {
	return model.SpokeSpec{Brand: "Sapim", Model: "Race", Mass: 5.2}
}

func SampleNipple() model.NippleSpec {
	return model.NippleSpec{Brand: "Sapim", Model: "Polyax Alu", Mass: 0.8}
}

// SeedCatalog stores the sample parts in repo.
func SeedCatalog(ctx context.Context, repo api.CatalogRepository) {
	rim := SampleRim()
	hub := SampleHub()
	spHub := SampleStraightPullHub()
	spoke := SampleSpoke()
	nipple := SampleNipple()
	for _, f := range []func() error{
		func() error { return repo.SaveRim(ctx, &rim) },
		func() error { return repo.SaveHub(ctx, &hub) },
		func() error { return repo.SaveHub(ctx, &spHub) },
		func() error { return repo.SaveSpoke(ctx, &spoke) },
		func() error { return repo.SaveNipple(ctx, &nipple) },
	} {
		if err := f(); err != nil {
			log.Fatalf("SeedCatalog: %v\n", err)
		}
	}
}
