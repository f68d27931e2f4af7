package bob

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"

	"github.com/prowheel/wheellab/pkg/repository/api"
	"github.com/prowheel/wheellab/pkg/repository/bob/build"
	"github.com/prowheel/wheellab/pkg/repository/bob/catalog"
	"github.com/prowheel/wheellab/pkg/repository/bob/recipe"
)

type bobRepositories struct {
	catalogRepository api.CatalogRepository
	buildRepository   api.BuildRepository
	recipeRepository  api.RecipeRepository
}

var _ api.Repositories = (*bobRepositories)(nil)

func NewRepositoriesFromPool(pool *pgxpool.Pool) api.Repositories {
	db := bob.NewDB(stdlib.OpenDBFromPool(pool))
	return NewRepositories(db)
}

func NewRepositories(db bob.DB) api.Repositories {
	return &bobRepositories{
		catalogRepository: catalog.NewCatalogRepository(db),
		buildRepository:   build.NewBuildRepository(db),
		recipeRepository:  recipe.NewRecipeRepository(db),
	}
}

func (r *bobRepositories) Catalog() api.CatalogRepository {
	return r.catalogRepository
}

func (r *bobRepositories) Build() api.BuildRepository {
	return r.buildRepository
}

func (r *bobRepositories) Recipe() api.RecipeRepository {
	return r.recipeRepository
}
