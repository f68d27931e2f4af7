//nolint:whitespace // can't make both editor and linter happy
package catalog

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
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

	rimRow struct {
		Brand string          `db:"brand"`
		Model string          `db:"model"`
		ERD   decimal.Decimal `db:"erd"`
		Holes int32           `db:"holes"`
		Mass  decimal.Decimal `db:"mass"`
	}
	hubRow struct {
		Brand         string              `db:"brand"`
		Model         string              `db:"model"`
		Mass          decimal.Decimal     `db:"mass"`
		LeftPcd       decimal.Decimal     `db:"left_pcd"`
		LeftOffset    decimal.Decimal     `db:"left_offset"`
		LeftSPOffset  decimal.NullDecimal `db:"left_sp_offset"`
		LeftSPRadius  decimal.Decimal     `db:"left_sp_radius"`
		RightPcd      decimal.Decimal     `db:"right_pcd"`
		RightOffset   decimal.Decimal     `db:"right_offset"`
		RightSPOffset decimal.NullDecimal `db:"right_sp_offset"`
		RightSPRadius decimal.Decimal     `db:"right_sp_radius"`
	}
	// spokes and nipples share the same layout
	unitRow struct {
		Brand string          `db:"brand"`
		Model string          `db:"model"`
		Mass  decimal.Decimal `db:"mass"`
	}
)

const (
	tableRim    = "rim"
	tableHub    = "hub"
	tableSpoke  = "spoke"
	tableNipple = "nipple"
)

var (
	rimColumns = []string{"brand", "model", "erd", "holes", "mass"}
	hubColumns = []string{
		"brand", "model", "mass",
		"left_pcd", "left_offset", "left_sp_offset", "left_sp_radius",
		"right_pcd", "right_offset", "right_sp_offset", "right_sp_radius",
	}
	unitColumns = []string{"brand", "model", "mass"}
)

var _ api.CatalogRepository = (*repo)(nil)

func NewCatalogRepository(conn bob.Executor) api.CatalogRepository {
	return &repo{
		conn: conn,
	}
}

func (r *repo) ListRims(ctx context.Context) ([]model.RimSpec, error) {
	rows, err := listRows[rimRow](ctx, r.getExecutor(ctx), tableRim, rimColumns)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row rimRow, _ int) model.RimSpec {
		return model.RimSpec{
			Brand: row.Brand,
			Model: row.Model,
			ERD:   row.ERD.InexactFloat64(),
			Holes: int(row.Holes),
			Mass:  row.Mass.InexactFloat64(),
		}
	}), nil
}

func (r *repo) ListHubs(ctx context.Context) ([]model.HubSpec, error) {
	rows, err := listRows[hubRow](ctx, r.getExecutor(ctx), tableHub, hubColumns)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row hubRow, _ int) model.HubSpec {
		return model.HubSpec{
			Brand: row.Brand,
			Model: row.Model,
			Mass:  row.Mass.InexactFloat64(),
			Left: model.HubSide{
				FlangeDiameter: row.LeftPcd.InexactFloat64(),
				Offset:         row.LeftOffset.InexactFloat64(),
				SPOffset:       fromNull(row.LeftSPOffset),
				SPRadius:       row.LeftSPRadius.InexactFloat64(),
			},
			Right: model.HubSide{
				FlangeDiameter: row.RightPcd.InexactFloat64(),
				Offset:         row.RightOffset.InexactFloat64(),
				SPOffset:       fromNull(row.RightSPOffset),
				SPRadius:       row.RightSPRadius.InexactFloat64(),
			},
		}
	}), nil
}

func (r *repo) ListSpokes(ctx context.Context) ([]model.SpokeSpec, error) {
	rows, err := listRows[unitRow](ctx, r.getExecutor(ctx), tableSpoke, unitColumns)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row unitRow, _ int) model.SpokeSpec {
		return model.SpokeSpec{Brand: row.Brand, Model: row.Model, Mass: row.Mass.InexactFloat64()}
	}), nil
}

func (r *repo) ListNipples(ctx context.Context) ([]model.NippleSpec, error) {
	rows, err := listRows[unitRow](ctx, r.getExecutor(ctx), tableNipple, unitColumns)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row unitRow, _ int) model.NippleSpec {
		return model.NippleSpec{Brand: row.Brand, Model: row.Model, Mass: row.Mass.InexactFloat64()}
	}), nil
}

func (r *repo) SaveRim(ctx context.Context, rim *model.RimSpec) error {
	return r.upsert(ctx, tableRim, rimColumns,
		rim.Brand, rim.Model,
		decimal.NewFromFloat(rim.ERD),
		rim.Holes,
		decimal.NewFromFloat(rim.Mass),
	)
}

func (r *repo) SaveHub(ctx context.Context, hub *model.HubSpec) error {
	return r.upsert(ctx, tableHub, hubColumns,
		hub.Brand, hub.Model,
		decimal.NewFromFloat(hub.Mass),
		decimal.NewFromFloat(hub.Left.FlangeDiameter),
		decimal.NewFromFloat(hub.Left.Offset),
		toNull(hub.Left.SPOffset),
		decimal.NewFromFloat(hub.Left.SPRadius),
		decimal.NewFromFloat(hub.Right.FlangeDiameter),
		decimal.NewFromFloat(hub.Right.Offset),
		toNull(hub.Right.SPOffset),
		decimal.NewFromFloat(hub.Right.SPRadius),
	)
}

// NULL stands for a hub side without straight-pull calibration
func toNull(v *float64) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*v))
}

func fromNull(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	return lo.ToPtr(d.Decimal.InexactFloat64())
}

func (r *repo) SaveSpoke(ctx context.Context, spoke *model.SpokeSpec) error {
	return r.upsert(ctx, tableSpoke, unitColumns,
		spoke.Brand, spoke.Model, decimal.NewFromFloat(spoke.Mass))
}

func (r *repo) SaveNipple(ctx context.Context, nipple *model.NippleSpec) error {
	return r.upsert(ctx, tableNipple, unitColumns,
		nipple.Brand, nipple.Model, decimal.NewFromFloat(nipple.Mass))
}

// upsert inserts a part or replaces the attributes of the part with the
// same brand and model. The first two columns must be brand and model.
func (r *repo) upsert(
	ctx context.Context,
	table string,
	columns []string,
	values ...any,
) error {
	q := psql.Insert(
		im.Into(table, columns...),
		im.Values(psql.Arg(values...)),
		im.OnConflict("brand", "model").DoUpdate(
			im.SetExcluded(columns[2:]...),
		),
	)
	_, err := q.Exec(ctx, r.getExecutor(ctx))
	return err
}

// catalog order is insertion order
func listRows[T any](
	ctx context.Context,
	exec bob.Executor,
	table string,
	columns []string,
) ([]T, error) {
	q := psql.Select(
		sm.Columns(lo.ToAnySlice(columns)...),
		sm.From(table),
		sm.OrderBy("id").Asc(),
	)
	return bob.All(ctx, exec, q, scan.StructMapper[T]())
}

func (r *repo) getExecutor(ctx context.Context) bob.Executor {
	return bobCtx.ExecutorOrDefault(ctx, r.conn)
}
