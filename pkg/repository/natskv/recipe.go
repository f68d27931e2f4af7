// Package natskv stores the recipe archive in a NATS JetStream key value bucket.
package natskv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/prowheel/wheellab/log"
	"github.com/prowheel/wheellab/pkg/model"
	"github.com/prowheel/wheellab/pkg/repository/api"
	"github.com/prowheel/wheellab/pkg/utils"
)

const (
	DefaultBucket = "wheellab_recipes"
	keyPrefix     = "recipe."
)

var ErrTooManyConflicts = errors.New("too many concurrent modifications")

type (
	Option func(*recipeRepo)

	// recipeRepo uses the revision of a key for compare-and-swap updates.
	// A conflicting write causes a re-read and a retry.
	recipeRepo struct {
		kv         jetstream.KeyValue
		bucket     string
		maxRetries int
		log        *log.Logger
		now        func() time.Time
	}

	// stored value
	recipeValue struct {
		RimLabel     string    `json:"rimLabel"`
		HubLabel     string    `json:"hubLabel"`
		Holes        int       `json:"holes"`
		Crosses      int       `json:"crosses"`
		StraightPull bool      `json:"straightPull"`
		Left         float64   `json:"left"`
		Right        float64   `json:"right"`
		HitCount     int       `json:"hitCount"`
		UpdatedAt    time.Time `json:"updatedAt"`
	}
)

var _ api.RecipeRepository = (*recipeRepo)(nil)

// WithBucket sets the bucket name. An empty name keeps DefaultBucket.
func WithBucket(name string) Option {
	return func(r *recipeRepo) {
		if name != "" {
			r.bucket = name
		}
	}
}

func WithMaxRetries(n int) Option {
	return func(r *recipeRepo) {
		r.maxRetries = n
	}
}

func WithLogger(l *log.Logger) Option {
	return func(r *recipeRepo) {
		r.log = l
	}
}

// NewRecipeRepository creates (or reuses) the bucket on the JetStream
// server reached via nc.
func NewRecipeRepository(
	ctx context.Context,
	nc *nats.Conn,
	opts ...Option,
) (api.RecipeRepository, error) {
	ret := &recipeRepo{
		bucket:     DefaultBucket,
		maxRetries: 10,
		log:        log.Default().Named("natskv"),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(ret)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, err
	}
	ret.kv, err = js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      ret.bucket,
		Description: "spoke length recipes",
		History:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("create bucket %s: %w", ret.bucket, err)
	}
	ret.log.Debug("recipe bucket ready", log.String("bucket", ret.bucket))
	return ret, nil
}

func composeKey(fp model.Fingerprint) string {
	return keyPrefix + utils.HashKey(fp.Key())
}

//nolint:whitespace // editor/linter issue
func (r *recipeRepo) Upsert(
	ctx context.Context,
	fp model.Fingerprint,
	left, right float64,
) (*model.RecipeEntry, error) {
	key := composeKey(fp)
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		entry, err := r.tryUpsert(ctx, key, fp, left, right)
		if err == nil {
			return entry, nil
		}
		if !isConflict(err) {
			return nil, err
		}
		r.log.Debug("revision conflict, retrying",
			log.String("fingerprint", fp.Key()),
			log.Int("attempt", attempt+1))
	}
	return nil, fmt.Errorf("upsert %s: %w", fp.Key(), ErrTooManyConflicts)
}

//nolint:whitespace // editor/linter issue
func (r *recipeRepo) tryUpsert(
	ctx context.Context,
	key string,
	fp model.Fingerprint,
	left, right float64,
) (*model.RecipeEntry, error) {
	kve, err := r.kv.Get(ctx, key)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, err
	}
	value := recipeValue{
		RimLabel:     fp.RimLabel,
		HubLabel:     fp.HubLabel,
		Holes:        fp.Holes,
		Crosses:      fp.Crosses,
		StraightPull: fp.StraightPull,
	}
	if kve != nil {
		if err := json.Unmarshal(kve.Value(), &value); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
	}
	value.Left = left
	value.Right = right
	value.HitCount++
	value.UpdatedAt = r.now()
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if kve == nil {
		_, err = r.kv.Create(ctx, key, data)
	} else {
		_, err = r.kv.Update(ctx, key, data, kve.Revision())
	}
	if err != nil {
		return nil, err
	}
	return value.toModel(), nil
}

// isConflict reports whether another writer modified the key in between.
func isConflict(err error) bool {
	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}
	var apiErr *jetstream.APIError
	return errors.As(err, &apiErr) &&
		apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
}

//nolint:whitespace // editor/linter issue
func (r *recipeRepo) LoadByFingerprint(
	ctx context.Context,
	fp model.Fingerprint,
) (*model.RecipeEntry, error) {
	return r.load(ctx, composeKey(fp))
}

func (r *recipeRepo) load(ctx context.Context, key string) (*model.RecipeEntry, error) {
	kve, err := r.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, api.ErrNoRows
		}
		return nil, err
	}
	var value recipeValue
	if err := json.Unmarshal(kve.Value(), &value); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return value.toModel(), nil
}

func (r *recipeRepo) LoadAll(ctx context.Context) ([]*model.RecipeEntry, error) {
	lister, err := r.kv.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // nothing to do on error
	defer lister.Stop()

	ret := make([]*model.RecipeEntry, 0)
	for key := range lister.Keys() {
		if !strings.HasPrefix(key, keyPrefix) {
			continue
		}
		entry, err := r.load(ctx, key)
		if errors.Is(err, api.ErrNoRows) {
			continue // deleted meanwhile
		}
		if err != nil {
			return nil, err
		}
		ret = append(ret, entry)
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

func (v *recipeValue) toModel() *model.RecipeEntry {
	return &model.RecipeEntry{
		Fingerprint: model.Fingerprint{
			RimLabel:     v.RimLabel,
			HubLabel:     v.HubLabel,
			Holes:        v.Holes,
			Crosses:      v.Crosses,
			StraightPull: v.StraightPull,
		},
		Left:      v.Left,
		Right:     v.Right,
		HitCount:  v.HitCount,
		UpdatedAt: v.UpdatedAt,
	}
}
