// Package recipe keeps an archive of computed spoke lengths keyed by the
// inputs that produced them. The archive is informational only, lengths are
// always computed by the solver.
package recipe

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/prowheel/wheellab/log"
	"github.com/prowheel/wheellab/pkg/model"
	"github.com/prowheel/wheellab/pkg/repository/api"
)

var meter = otel.Meter("recipe-archive")

type (
	Archive struct {
		repo    api.RecipeRepository
		log     *log.Logger
		upserts metric.Int64Counter
	}
	Option func(*Archive)
)

func WithLogger(l *log.Logger) Option {
	return func(a *Archive) {
		a.log = l
	}
}

func NewArchive(repo api.RecipeRepository, opts ...Option) *Archive {
	ret := &Archive{
		repo: repo,
		log:  log.Default().Named("recipe"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	//nolint:errcheck // the noop counter is returned on error
	ret.upserts, _ = meter.Int64Counter("recipe_upserts",
		metric.WithDescription("number of recipe upserts"),
		metric.WithUnit("{upsert}"))
	return ret
}

// Upsert records the lengths for fp. The first call for a fingerprint creates
// the entry, later calls replace the lengths and increment the hit count.
func (a *Archive) Upsert(
	ctx context.Context,
	fp model.Fingerprint,
	lengths model.SpokeLengths,
) (model.UpsertResult, error) {
	entry, err := a.repo.Upsert(ctx, fp, lengths.Left, lengths.Right)
	if err != nil {
		return model.UpsertResult{}, fmt.Errorf("upsert recipe %s: %w", fp.Key(), err)
	}
	ret := model.UpsertResult{
		Outcome:  model.OutcomeFor(entry.HitCount),
		HitCount: entry.HitCount,
		Entry:    *entry,
	}
	a.upserts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", ret.Outcome.String()),
		attribute.Bool("straight_pull", fp.StraightPull)))
	a.log.Debug("recipe stored",
		log.String("fingerprint", fp.Key()),
		log.String("outcome", ret.Outcome.String()),
		log.Int("hits", ret.HitCount))
	return ret, nil
}

// Lookup returns the archived entry for fp or model.ErrNotFound.
func (a *Archive) Lookup(ctx context.Context, fp model.Fingerprint) (*model.RecipeEntry, error) {
	entry, err := a.repo.LoadByFingerprint(ctx, fp)
	if err != nil {
		if errors.Is(err, api.ErrNoRows) {
			return nil, fmt.Errorf("recipe %s: %w", fp.Key(), model.ErrNotFound)
		}
		return nil, err
	}
	return entry, nil
}

// Popular returns up to limit entries, most frequently built first.
// A limit <= 0 returns all entries.
func (a *Archive) Popular(ctx context.Context, limit int) ([]*model.RecipeEntry, error) {
	if limit <= 0 {
		return a.repo.LoadAll(ctx)
	}
	return a.repo.LoadTop(ctx, limit)
}
