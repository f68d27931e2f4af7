package memory

import (
	"context"
	"sync"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/prowheel/wheellab/pkg/model"
	"github.com/prowheel/wheellab/pkg/repository/api"
)

var sampleFingerprint = model.Fingerprint{
	RimLabel: "DT Swiss RR 411", HubLabel: "DT Swiss 240s",
	Holes: 28, Crosses: 3, StraightPull: false,
}

func TestRecipeUpsert(t *testing.T) {
	r := NewRecipeRepository()
	ctx := context.Background()

	first, err := r.Upsert(ctx, sampleFingerprint, 297.9, 299.7)
	assert.NilError(t, err)
	assert.Equal(t, first.HitCount, 1)

	second, err := r.Upsert(ctx, sampleFingerprint, 298, 300)
	assert.NilError(t, err)
	assert.Equal(t, second.HitCount, 2)
	assert.Equal(t, second.Left, 298.0)
	assert.Equal(t, second.Right, 300.0)

	all, err := r.LoadAll(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(all), 1)
}

func TestRecipeFingerprintIsExact(t *testing.T) {
	r := NewRecipeRepository()
	ctx := context.Background()
	other := sampleFingerprint
	other.RimLabel = "dt swiss rr 411"
	sp := sampleFingerprint
	sp.StraightPull = true

	for _, fp := range []model.Fingerprint{sampleFingerprint, other, sp} {
		_, err := r.Upsert(ctx, fp, 1, 1)
		assert.NilError(t, err)
	}
	all, err := r.LoadAll(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(all), 3)
}

func TestRecipeConcurrentUpsert(t *testing.T) {
	r := NewRecipeRepository()
	ctx := context.Background()
	const workers = 50
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Upsert(ctx, sampleFingerprint, float64(i), float64(i))
			if err != nil {
				t.Errorf("Upsert: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := r.LoadByFingerprint(ctx, sampleFingerprint)
	assert.NilError(t, err)
	assert.Equal(t, got.HitCount, workers)
}

func TestRecipeConcurrentUpsertManyFingerprints(t *testing.T) {
	r := NewRecipeRepository()
	ctx := context.Background()
	const fingerprints = 16
	const rounds = 5
	var wg sync.WaitGroup
	for i := range fingerprints * rounds {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fp := sampleFingerprint
			fp.Holes = 2 * (i%fingerprints + 1)
			if _, err := r.Upsert(ctx, fp, 1, 1); err != nil {
				t.Errorf("Upsert: %v", err)
			}
		}(i)
	}
	wg.Wait()

	all, err := r.LoadAll(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(all), fingerprints)
	for _, e := range all {
		assert.Equal(t, e.HitCount, rounds)
	}
}

func TestRecipeLoadTop(t *testing.T) {
	r := NewRecipeRepository()
	ctx := context.Background()
	popular := sampleFingerprint
	popular.Holes = 32
	for range 3 {
		_, _ = r.Upsert(ctx, popular, 1, 1)
	}
	_, _ = r.Upsert(ctx, sampleFingerprint, 1, 1)

	top, err := r.LoadTop(ctx, 1)
	assert.NilError(t, err)
	assert.Equal(t, len(top), 1)
	assert.Equal(t, top[0].Fingerprint, popular)
	assert.Equal(t, top[0].HitCount, 3)

	_, err = r.LoadByFingerprint(ctx, model.Fingerprint{RimLabel: "unknown"})
	assert.ErrorIs(t, err, api.ErrNoRows)
}
