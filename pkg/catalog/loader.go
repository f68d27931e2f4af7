package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/prowheel/wheellab/log"
	"github.com/prowheel/wheellab/pkg/repository/api"
	"github.com/prowheel/wheellab/pkg/utils/cache"
	"github.com/prowheel/wheellab/pkg/utils/cache/loadercache"
)

const snapshotKey = "catalog"

type (
	// Loader provides catalog snapshots read from a CatalogRepository.
	// Snapshots are cached until they expire or are invalidated.
	Loader struct {
		repo       api.CatalogRepository
		cache      cache.Cache[string, Catalog]
		expiration time.Duration
		log        *log.Logger
	}
	LoaderOption func(*Loader)
)

func WithExpiration(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.expiration = d
	}
}

func WithLogger(logger *log.Logger) LoaderOption {
	return func(l *Loader) {
		l.log = logger
	}
}

func NewLoader(repo api.CatalogRepository, opts ...LoaderOption) *Loader {
	ret := &Loader{
		repo:       repo,
		expiration: time.Minute,
		log:        log.Default().Named("catalog"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.cache = loadercache.New(
		loadercache.WithLoader(func(ctx context.Context, _ string) (*Catalog, error) {
			return Load(ctx, ret.repo)
		}),
		loadercache.WithExpiration[string, Catalog](ret.expiration),
		loadercache.WithLogger[string, Catalog](ret.log.Named("cache")),
	)
	return ret
}

// Catalog returns the current snapshot.
func (l *Loader) Catalog(ctx context.Context) (*Catalog, error) {
	return l.cache.Get(ctx, snapshotKey)
}

// Invalidate drops the cached snapshot, the next call to Catalog reloads it.
func (l *Loader) Invalidate(ctx context.Context) {
	l.log.Debug("invalidating catalog snapshot")
	l.cache.Invalidate(ctx, snapshotKey)
}

// Load reads all catalog tables from repo.
func Load(ctx context.Context, repo api.CatalogRepository) (*Catalog, error) {
	var (
		ret Catalog
		err error
	)
	if ret.Rims, err = repo.ListRims(ctx); err != nil {
		return nil, fmt.Errorf("list rims: %w", err)
	}
	if ret.Hubs, err = repo.ListHubs(ctx); err != nil {
		return nil, fmt.Errorf("list hubs: %w", err)
	}
	if ret.Spokes, err = repo.ListSpokes(ctx); err != nil {
		return nil, fmt.Errorf("list spokes: %w", err)
	}
	if ret.Nipples, err = repo.ListNipples(ctx); err != nil {
		return nil, fmt.Errorf("list nipples: %w", err)
	}
	return &ret, nil
}
