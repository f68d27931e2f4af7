package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/prowheel/wheellab/pkg/model"
	"github.com/prowheel/wheellab/pkg/repository/api"
)

type catalogRepo struct {
	mu      sync.RWMutex
	rims    []model.RimSpec
	hubs    []model.HubSpec
	spokes  []model.SpokeSpec
	nipples []model.NippleSpec
}

var _ api.CatalogRepository = (*catalogRepo)(nil)

func NewCatalogRepository() api.CatalogRepository {
	return &catalogRepo{}
}

func (r *catalogRepo) ListRims(ctx context.Context) ([]model.RimSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.rims), nil
}

func (r *catalogRepo) ListHubs(ctx context.Context) ([]model.HubSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.hubs), nil
}

func (r *catalogRepo) ListSpokes(ctx context.Context) ([]model.SpokeSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.spokes), nil
}

func (r *catalogRepo) ListNipples(ctx context.Context) ([]model.NippleSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.nipples), nil
}

func (r *catalogRepo) SaveRim(ctx context.Context, rim *model.RimSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rims = model.ReplaceByLabel(r.rims, *rim)
	return nil
}

func (r *catalogRepo) SaveHub(ctx context.Context, hub *model.HubSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hubs = model.ReplaceByLabel(r.hubs, *hub)
	return nil
}

func (r *catalogRepo) SaveSpoke(ctx context.Context, spoke *model.SpokeSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spokes = model.ReplaceByLabel(r.spokes, *spoke)
	return nil
}

func (r *catalogRepo) SaveNipple(ctx context.Context, nipple *model.NippleSpec) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nipples = model.ReplaceByLabel(r.nipples, *nipple)
	return nil
}
