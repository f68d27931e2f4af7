//nolint:whitespace // can't make both editor and linter happy
package recipe

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/prowheel/wheellab/pkg/model"
	"github.com/prowheel/wheellab/pkg/repository/api"
	bobCtx "github.com/prowheel/wheellab/pkg/repository/bob/context"
)

type (
	repo struct {
		conn bob.Executor
	}
	recipeRow struct {
		RimLabel     string          `db:"rim_label"`
		HubLabel     string          `db:"hub_label"`
		Holes        int32           `db:"holes"`
		Crosses      int32           `db:"crosses"`
		StraightPull bool            `db:"straight_pull"`
		LeftLength   decimal.Decimal `db:"left_length"`
		RightLength  decimal.Decimal `db:"right_length"`
		HitCount     int32           `db:"hit_count"`
		UpdatedAt    time.Time       `db:"updated_at"`
	}
)

const tableRecipe = "recipe"

var (
	fingerprintColumns = []string{"rim_label", "hub_label", "holes", "crosses", "straight_pull"}
	recipeColumns      = append(slices.Clone(fingerprintColumns),
		"left_length", "right_length", "hit_count", "updated_at")
)

var _ api.RecipeRepository = (*repo)(nil)

func NewRecipeRepository(conn bob.Executor) api.RecipeRepository {
	return &repo{
		conn: conn,
	}
}

// Upsert relies on the unique fingerprint constraint. The insert and the
// hit count increment are a single statement, concurrent calls for the same
// fingerprint are serialized by the database.
func (r *repo) Upsert(
	ctx context.Context,
	fp model.Fingerprint,
	left, right float64,
) (*model.RecipeEntry, error) {
	q := psql.Insert(
		im.Into(tableRecipe, recipeColumns...),
		im.Values(psql.Arg(
			fp.RimLabel, fp.HubLabel, fp.Holes, fp.Crosses, fp.StraightPull,
			decimal.NewFromFloat(left), decimal.NewFromFloat(right),
			1, time.Now().UTC(),
		)),
		im.OnConflict(lo.ToAnySlice(fingerprintColumns)...).DoUpdate(
			im.SetCol("left_length").To(psql.Raw("EXCLUDED.left_length")),
			im.SetCol("right_length").To(psql.Raw("EXCLUDED.right_length")),
			im.SetCol("updated_at").To(psql.Raw("EXCLUDED.updated_at")),
			im.SetCol("hit_count").To(psql.Raw("recipe.hit_count + 1")),
		),
		im.Returning(lo.ToAnySlice(recipeColumns)...),
	)
	row, err := bob.One(ctx, r.getExecutor(ctx), q, scan.StructMapper[recipeRow]())
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r *repo) LoadByFingerprint(
	ctx context.Context,
	fp model.Fingerprint,
) (*model.RecipeEntry, error) {
	q := psql.Select(
		sm.Columns(lo.ToAnySlice(recipeColumns)...),
		sm.From(tableRecipe),
		sm.Where(psql.Quote("rim_label").EQ(psql.Arg(fp.RimLabel))),
		sm.Where(psql.Quote("hub_label").EQ(psql.Arg(fp.HubLabel))),
		sm.Where(psql.Quote("holes").EQ(psql.Arg(fp.Holes))),
		sm.Where(psql.Quote("crosses").EQ(psql.Arg(fp.Crosses))),
		sm.Where(psql.Quote("straight_pull").EQ(psql.Arg(fp.StraightPull))),
	)
	row, err := bob.One(ctx, r.getExecutor(ctx), q, scan.StructMapper[recipeRow]())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, api.ErrNoRows
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (r *repo) LoadAll(ctx context.Context) ([]*model.RecipeEntry, error) {
	return r.load(ctx, 0)
}

func (r *repo) LoadTop(ctx context.Context, limit int) ([]*model.RecipeEntry, error) {
	return r.load(ctx, limit)
}

// most hits first, ties ordered by fingerprint
func (r *repo) load(ctx context.Context, limit int) ([]*model.RecipeEntry, error) {
	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(lo.ToAnySlice(recipeColumns)...),
		sm.From(tableRecipe),
		sm.OrderBy("hit_count").Desc(),
		sm.OrderBy("rim_label").Asc(),
		sm.OrderBy("hub_label").Asc(),
		sm.OrderBy("holes").Asc(),
		sm.OrderBy("crosses").Asc(),
		sm.OrderBy("straight_pull").Asc(),
	}
	if limit > 0 {
		mods = append(mods, sm.Limit(limit))
	}
	rows, err := bob.All(ctx, r.getExecutor(ctx),
		psql.Select(mods...), scan.StructMapper[recipeRow]())
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row recipeRow, _ int) *model.RecipeEntry {
		return row.toModel()
	}), nil
}

func (row *recipeRow) toModel() *model.RecipeEntry {
	return &model.RecipeEntry{
		Fingerprint: model.Fingerprint{
			RimLabel:     row.RimLabel,
			HubLabel:     row.HubLabel,
			Holes:        int(row.Holes),
			Crosses:      int(row.Crosses),
			StraightPull: row.StraightPull,
		},
		Left:      row.LeftLength.InexactFloat64(),
		Right:     row.RightLength.InexactFloat64(),
		HitCount:  int(row.HitCount),
		UpdatedAt: row.UpdatedAt,
	}
}

func (r *repo) getExecutor(ctx context.Context) bob.Executor {
	return bobCtx.ExecutorOrDefault(ctx, r.conn)
}
