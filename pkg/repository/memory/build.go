package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/prowheel/wheellab/pkg/model"
	"github.com/prowheel/wheellab/pkg/repository/api"
)

type buildRepo struct {
	mu     sync.RWMutex
	builds map[uuid.UUID]*model.BuildRecord
	order  []uuid.UUID
}

var _ api.BuildRepository = (*buildRepo)(nil)

func NewBuildRepository() api.BuildRepository {
	return &buildRepo{builds: make(map[uuid.UUID]*model.BuildRecord)}
}

// LoadAll returns all builds, newest first.
func (r *buildRepo) LoadAll(ctx context.Context) ([]*model.BuildRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret := make([]*model.BuildRecord, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		b := *r.builds[r.order[i]]
		ret = append(ret, &b)
	}
	return ret, nil
}

func (r *buildRepo) LoadByID(ctx context.Context, id uuid.UUID) (*model.BuildRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.builds[id]
	if !ok {
		return nil, api.ErrNoRows
	}
	ret := *b
	return &ret, nil
}

// Create stores build. A missing ID or creation time is filled in.
func (r *buildRepo) Create(ctx context.Context, build *model.BuildRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if build.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		build.ID = id
	}
	if _, ok := r.builds[build.ID]; ok {
		return fmt.Errorf("build %s already exists", build.ID)
	}
	if build.CreatedAt.IsZero() {
		build.CreatedAt = time.Now().UTC()
	}
	stored := *build
	r.builds[build.ID] = &stored
	r.order = append(r.order, build.ID)
	return nil
}

func (r *buildRepo) Update(
	ctx context.Context,
	id uuid.UUID,
	patch *model.BuildPatch,
) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.builds[id]
	if !ok || patch == nil || patch.IsEmpty() {
		return 0, nil
	}
	patch.Apply(b)
	return 1, nil
}
