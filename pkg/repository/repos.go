// Package repository combines repositories of different stores.
package repository

import "github.com/prowheel/wheellab/pkg/repository/api"

type (
	Option func(*composite)

	composite struct {
		catalog api.CatalogRepository
		build   api.BuildRepository
		recipe  api.RecipeRepository
	}
)

var _ api.Repositories = (*composite)(nil)

// WithCatalog replaces the catalog repository of the base.
func WithCatalog(r api.CatalogRepository) Option {
	return func(c *composite) {
		c.catalog = r
	}
}

// WithRecipe replaces the recipe repository of the base.
func WithRecipe(r api.RecipeRepository) Option {
	return func(c *composite) {
		c.recipe = r
	}
}

// Compose returns the repositories of base with the replacements of opts.
func Compose(base api.Repositories, opts ...Option) api.Repositories {
	ret := &composite{
		catalog: base.Catalog(),
		build:   base.Build(),
		recipe:  base.Recipe(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (c *composite) Catalog() api.CatalogRepository { return c.catalog }
func (c *composite) Build() api.BuildRepository     { return c.build }
func (c *composite) Recipe() api.RecipeRepository   { return c.recipe }
