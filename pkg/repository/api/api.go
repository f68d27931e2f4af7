package api

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"

	"github.com/prowheel/wheellab/pkg/model"
)

var ErrNoRows = errors.New("no rows in result set")

type Repositories interface {
	Catalog() CatalogRepository
	Build() BuildRepository
	Recipe() RecipeRepository
}

// CatalogRepository provides read access to the parts catalog.
// The Save methods are used by catalog imports only.
type CatalogRepository interface {
	ListRims(ctx context.Context) ([]model.RimSpec, error)
	ListHubs(ctx context.Context) ([]model.HubSpec, error)
	ListSpokes(ctx context.Context) ([]model.SpokeSpec, error)
	ListNipples(ctx context.Context) ([]model.NippleSpec, error)
	SaveRim(ctx context.Context, rim *model.RimSpec) error
	SaveHub(ctx context.Context, hub *model.HubSpec) error
	SaveSpoke(ctx context.Context, spoke *model.SpokeSpec) error
	SaveNipple(ctx context.Context, nipple *model.NippleSpec) error
}

type BuildRepository interface {
	LoadAll(ctx context.Context) ([]*model.BuildRecord, error)
	LoadByID(ctx context.Context, id uuid.UUID) (*model.BuildRecord, error)
	Create(ctx context.Context, build *model.BuildRecord) error
	// Update applies a partial update, returns the number of affected rows.
	Update(ctx context.Context, id uuid.UUID, patch *model.BuildPatch) (int, error)
}

// RecipeRepository stores spoke length recipes.
// Upsert must be a single atomic read-modify-write: the first call for a
// fingerprint creates the entry with hit count 1, later calls overwrite the
// lengths and increment the hit count.
type RecipeRepository interface {
	Upsert(
		ctx context.Context,
		fp model.Fingerprint,
		left, right float64,
	) (*model.RecipeEntry, error)
	LoadByFingerprint(ctx context.Context, fp model.Fingerprint) (*model.RecipeEntry, error)
	LoadAll(ctx context.Context) ([]*model.RecipeEntry, error)
	// LoadTop returns up to limit entries ordered by hit count (desc).
	LoadTop(ctx context.Context, limit int) ([]*model.RecipeEntry, error)
}

type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
