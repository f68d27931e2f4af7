// Package memory provides repositories keeping all data in process memory.
// They are used for local calculations and tests.
package memory

import (
	"context"

	"github.com/prowheel/wheellab/pkg/repository/api"
)

type memRepositories struct {
	catalog api.CatalogRepository
	build   api.BuildRepository
	recipe  api.RecipeRepository
}

var _ api.Repositories = (*memRepositories)(nil)

func NewRepositories() api.Repositories {
	return &memRepositories{
		catalog: NewCatalogRepository(),
		build:   NewBuildRepository(),
		recipe:  NewRecipeRepository(),
	}
}

func (r *memRepositories) Catalog() api.CatalogRepository { return r.catalog }
func (r *memRepositories) Build() api.BuildRepository     { return r.build }
func (r *memRepositories) Recipe() api.RecipeRepository   { return r.recipe }

type noTx struct{}

// NewTransactionManager returns a manager which just calls fn.
// The memory repositories synchronize each call on their own.
func NewTransactionManager() api.TransactionManager {
	return noTx{}
}

func (noTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
