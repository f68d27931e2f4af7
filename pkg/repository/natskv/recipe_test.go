package natskv

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/nats-io/nats.go/jetstream"
	"gotest.tools/v3/assert"

	"github.com/prowheel/wheellab/pkg/model"
	"github.com/prowheel/wheellab/pkg/repository/api"
	"github.com/prowheel/wheellab/testsupport/tcnats"
)

var sampleFingerprint = model.Fingerprint{
	RimLabel: "DT Swiss RR 411",
	HubLabel: "DT Swiss 240s",
	Holes:    28,
	Crosses:  3,
}

// each test uses its own bucket
func newTestRepo(t *testing.T) api.RecipeRepository {
	t.Helper()
	nc := tcnats.SetupTestNats()
	t.Cleanup(nc.Close)
	bucket := "test_" + uuid.Must(uuid.NewV4()).String()[:8]
	r, err := NewRecipeRepository(context.Background(), nc, WithBucket(bucket))
	assert.NilError(t, err)
	t.Cleanup(func() {
		js, err := jetstream.New(nc)
		if err == nil {
			//nolint:errcheck // cleanup
			js.DeleteKeyValue(context.Background(), bucket)
		}
	})
	return r
}

func TestComposeKey(t *testing.T) {
	key := composeKey(sampleFingerprint)
	assert.Assert(t, len(key) == len(keyPrefix)+64)
	sp := sampleFingerprint
	sp.StraightPull = true
	assert.Assert(t, composeKey(sp) != key)
}

func TestIsConflict(t *testing.T) {
	assert.Assert(t, isConflict(jetstream.ErrKeyExists))
	assert.Assert(t, isConflict(&jetstream.APIError{
		ErrorCode: jetstream.JSErrCodeStreamWrongLastSequence,
	}))
	assert.Assert(t, !isConflict(errors.New("other")))
}

func TestUpsert(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	first, err := r.Upsert(ctx, sampleFingerprint, 297.9, 299.7)
	assert.NilError(t, err)
	assert.Equal(t, first.HitCount, 1)

	second, err := r.Upsert(ctx, sampleFingerprint, 298, 300)
	assert.NilError(t, err)
	assert.Equal(t, second.HitCount, 2)
	assert.Equal(t, second.Left, 298.0)

	_, err = r.LoadByFingerprint(ctx, model.Fingerprint{RimLabel: "x"})
	assert.ErrorIs(t, err, api.ErrNoRows)

	all, err := r.LoadAll(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(all), 1)
	assert.Equal(t, all[0].Fingerprint, sampleFingerprint)
}

func TestConcurrentUpsert(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Upsert(ctx, sampleFingerprint, 290, 292)
			assert.Check(t, err)
		}()
	}
	wg.Wait()

	got, err := r.LoadByFingerprint(ctx, sampleFingerprint)
	assert.NilError(t, err)
	assert.Equal(t, got.HitCount, workers)
}
