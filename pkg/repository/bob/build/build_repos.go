//nolint:whitespace // can't make both editor and linter happy
package build

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

	"github.com/prowheel/wheellab/pkg/model"
	"github.com/prowheel/wheellab/pkg/repository/api"
	bobCtx "github.com/prowheel/wheellab/pkg/repository/bob/context"
)

type (
	repo struct {
		conn bob.Executor
	}
	buildRow struct {
		ID            uuid.UUID       `db:"id"`
		Customer      string          `db:"customer"`
		Notes         string          `db:"notes"`
		Status        string          `db:"status"`
		FrontRim      string          `db:"front_rim"`
		FrontHub      string          `db:"front_hub"`
		FrontLeft     decimal.Decimal `db:"front_left"`
		FrontRight    decimal.Decimal `db:"front_right"`
		RearRim       string          `db:"rear_rim"`
		RearHub       string          `db:"rear_hub"`
		RearLeft      decimal.Decimal `db:"rear_left"`
		RearRight     decimal.Decimal `db:"rear_right"`
		Spoke         string          `db:"spoke"`
		Nipple        string          `db:"nipple"`
		SpokeCount    int32           `db:"spoke_count"`
		CreatedAt     time.Time       `db:"created_at"`
		FrontComplete bool            `db:"front_complete"`
		RearComplete  bool            `db:"rear_complete"`
	}
)

const tableBuild = "build"

var buildColumns = []string{
	"id", "customer", "notes", "status",
	"front_rim", "front_hub", "front_left", "front_right",
	"rear_rim", "rear_hub", "rear_left", "rear_right",
	"spoke", "nipple", "spoke_count", "created_at",
	"front_complete", "rear_complete",
}

var _ api.BuildRepository = (*repo)(nil)

func NewBuildRepository(conn bob.Executor) api.BuildRepository {
	return &repo{
		conn: conn,
	}
}

// LoadAll returns all builds, newest first.
func (r *repo) LoadAll(ctx context.Context) ([]*model.BuildRecord, error) {
	q := psql.Select(
		sm.Columns(lo.ToAnySlice(buildColumns)...),
		sm.From(tableBuild),
		sm.OrderBy("created_at").Desc(),
	)
	rows, err := bob.All(ctx, r.getExecutor(ctx), q, scan.StructMapper[buildRow]())
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row buildRow, _ int) *model.BuildRecord {
		return row.toModel()
	}), nil
}

func (r *repo) LoadByID(ctx context.Context, id uuid.UUID) (*model.BuildRecord, error) {
	q := psql.Select(
		sm.Columns(lo.ToAnySlice(buildColumns)...),
		sm.From(tableBuild),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	row, err := bob.One(ctx, r.getExecutor(ctx), q, scan.StructMapper[buildRow]())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, api.ErrNoRows
		}
		return nil, err
	}
	return row.toModel(), nil
}

// Create stores a new build. A missing ID or creation time is filled in.
func (r *repo) Create(ctx context.Context, build *model.BuildRecord) error {
	if build.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		build.ID = id
	}
	if build.CreatedAt.IsZero() {
		build.CreatedAt = time.Now().UTC()
	}
	q := psql.Insert(
		im.Into(tableBuild, buildColumns...),
		im.Values(psql.Arg(
			build.ID, build.Customer, build.Notes, build.Status,
			build.Front.Rim, build.Front.Hub,
			decimal.NewFromFloat(build.Front.Lengths.Left),
			decimal.NewFromFloat(build.Front.Lengths.Right),
			build.Rear.Rim, build.Rear.Hub,
			decimal.NewFromFloat(build.Rear.Lengths.Left),
			decimal.NewFromFloat(build.Rear.Lengths.Right),
			build.Spoke, build.Nipple, build.SpokeCount, build.CreatedAt,
			build.Front.Lengths.Complete, build.Rear.Lengths.Complete,
		)),
	)
	_, err := q.Exec(ctx, r.getExecutor(ctx))
	return err
}

// Update applies the set fields of patch, returns the number of updated rows.
//
//nolint:funlen // one block per field
func (r *repo) Update(
	ctx context.Context,
	id uuid.UUID,
	patch *model.BuildPatch,
) (int, error) {
	if patch == nil || patch.IsEmpty() {
		return 0, nil
	}
	mods := []bob.Mod[*dialect.UpdateQuery]{um.Table(tableBuild)}
	set := func(col string, v any) {
		mods = append(mods, um.SetCol(col).To(psql.Arg(v)))
	}
	if v, ok := patch.Customer.Get(); ok {
		set("customer", v)
	}
	if v, ok := patch.Notes.Get(); ok {
		set("notes", v)
	}
	if v, ok := patch.Status.Get(); ok {
		set("status", v)
	}
	if v, ok := patch.Front.Get(); ok {
		set("front_rim", v.Rim)
		set("front_hub", v.Hub)
		set("front_left", decimal.NewFromFloat(v.Lengths.Left))
		set("front_right", decimal.NewFromFloat(v.Lengths.Right))
		set("front_complete", v.Lengths.Complete)
	}
	if v, ok := patch.Rear.Get(); ok {
		set("rear_rim", v.Rim)
		set("rear_hub", v.Hub)
		set("rear_left", decimal.NewFromFloat(v.Lengths.Left))
		set("rear_right", decimal.NewFromFloat(v.Lengths.Right))
		set("rear_complete", v.Lengths.Complete)
	}
	if v, ok := patch.Spoke.Get(); ok {
		set("spoke", v)
	}
	if v, ok := patch.Nipple.Get(); ok {
		set("nipple", v)
	}
	if v, ok := patch.SpokeCount.Get(); ok {
		set("spoke_count", v)
	}
	mods = append(mods, um.Where(psql.Quote("id").EQ(psql.Arg(id))))

	ret, err := psql.Update(mods...).Exec(ctx, r.getExecutor(ctx))
	return int(ret), err
}

func (row *buildRow) toModel() *model.BuildRecord {
	return &model.BuildRecord{
		ID:       row.ID,
		Customer: row.Customer,
		Notes:    row.Notes,
		Status:   row.Status,
		Front: model.WheelRef{
			Rim: row.FrontRim,
			Hub: row.FrontHub,
			Lengths: model.SpokeLengths{
				Left:     row.FrontLeft.InexactFloat64(),
				Right:    row.FrontRight.InexactFloat64(),
				Complete: row.FrontComplete,
			},
		},
		Rear: model.WheelRef{
			Rim: row.RearRim,
			Hub: row.RearHub,
			Lengths: model.SpokeLengths{
				Left:     row.RearLeft.InexactFloat64(),
				Right:    row.RearRight.InexactFloat64(),
				Complete: row.RearComplete,
			},
		},
		Spoke:      row.Spoke,
		Nipple:     row.Nipple,
		SpokeCount: int(row.SpokeCount),
		CreatedAt:  row.CreatedAt,
	}
}

func (r *repo) getExecutor(ctx context.Context) bob.Executor {
	return bobCtx.ExecutorOrDefault(ctx, r.conn)
}
