package memory

import (
	"context"
	"sync"
	"time"

	"github.com/prowheel/wheellab/pkg/model"
	"github.com/prowheel/wheellab/pkg/repository/api"
)

// recipeRepo serializes all upserts. mu is held for the whole
// read-modify-write.
type recipeRepo struct {
	mu      sync.Mutex
	entries map[model.Fingerprint]*model.RecipeEntry
	now     func() time.Time
}

var _ api.RecipeRepository = (*recipeRepo)(nil)

func NewRecipeRepository() api.RecipeRepository {
	return &recipeRepo{
		entries: make(map[model.Fingerprint]*model.RecipeEntry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *recipeRepo) Upsert(
	ctx context.Context,
	fp model.Fingerprint,
	left, right float64,
) (*model.RecipeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[fp]
	if !ok {
		entry = &model.RecipeEntry{Fingerprint: fp}
		r.entries[fp] = entry
	}
	entry.Left = left
	entry.Right = right
	entry.HitCount++
	entry.UpdatedAt = r.now()
	ret := *entry
	return &ret, nil
}

func (r *recipeRepo) LoadByFingerprint(
	ctx context.Context,
	fp model.Fingerprint,
) (*model.RecipeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[fp]
	if !ok {
		return nil, api.ErrNoRows
	}
	ret := *entry
	return &ret, nil
}

func (r *recipeRepo) LoadAll(ctx context.Context) ([]*model.RecipeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret := make([]*model.RecipeEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entry := *e
		ret = append(ret, &entry)
	}
	model.SortByHits(ret)
	return ret, nil
}

func (r *recipeRepo) LoadTop(ctx context.Context, limit int) ([]*model.RecipeEntry, error) {
	all, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
