//nolint:whitespace // can't make both editor and linter happy
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/prowheel/wheellab/log"
	"github.com/prowheel/wheellab/pkg/bom"
	"github.com/prowheel/wheellab/pkg/catalog"
	"github.com/prowheel/wheellab/pkg/model"
	"github.com/prowheel/wheellab/pkg/recipe"
	"github.com/prowheel/wheellab/pkg/repository/api"
	"github.com/prowheel/wheellab/pkg/repository/memory"
	"github.com/prowheel/wheellab/pkg/spoke"
)

type (
	Option func(*Workshop)

	// Workshop ties catalog, solver, archive and build store together.
	Workshop struct {
		repos     api.Repositories
		txManager api.TransactionManager
		loader    *catalog.Loader
		archive   *recipe.Archive
		spDefault struct{ left, right float64 }
		tracer    trace.Tracer
		log       *log.Logger

		// set when the recipe repository joins the transactions of txManager
		recipesInTx bool
	}
)

var ErrMissingRepositories = errors.New("repositories required")

func WithRepositories(repos api.Repositories) Option {
	return func(w *Workshop) {
		w.repos = repos
	}
}

func WithTxManager(tm api.TransactionManager) Option {
	return func(w *Workshop) {
		w.txManager = tm
	}
}

func WithCatalogLoader(l *catalog.Loader) Option {
	return func(w *Workshop) {
		w.loader = l
	}
}

// WithSPCalibration sets the straight-pull calibration terms used for hubs
// without calibration of their own.
func WithSPCalibration(left, right float64) Option {
	return func(w *Workshop) {
		w.spDefault.left = left
		w.spDefault.right = right
	}
}

// WithRecipesInTx declares that the recipe repository takes part in the
// transactions of the tx manager. Otherwise recipes of a registered build
// are archived after the build was committed.
func WithRecipesInTx(inTx bool) Option {
	return func(w *Workshop) {
		w.recipesInTx = inTx
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(w *Workshop) {
		w.tracer = tracer
	}
}

func WithLogger(l *log.Logger) Option {
	return func(w *Workshop) {
		w.log = l
	}
}

func NewWorkshop(opts ...Option) (*Workshop, error) {
	ret := &Workshop{
		log: log.Default().Named("workshop"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.repos == nil {
		return nil, ErrMissingRepositories
	}
	if ret.txManager == nil {
		ret.txManager = memory.NewTransactionManager()
	}
	if ret.loader == nil {
		ret.loader = catalog.NewLoader(ret.repos.Catalog())
	}
	if ret.tracer == nil {
		ret.tracer = otel.Tracer("wheellab")
	}
	ret.archive = recipe.NewArchive(ret.repos.Recipe(), recipe.WithLogger(ret.log.Named("recipe")))
	return ret, nil
}

// Catalog returns the current catalog snapshot.
func (w *Workshop) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	return w.loader.Catalog(ctx)
}

// InvalidateCatalog forces the next access to reload the catalog.
func (w *Workshop) InvalidateCatalog(ctx context.Context) {
	w.loader.Invalidate(ctx)
}

// Calculate solves both sides of a wheel. Unresolved parts do not cause an
// error, the result is incomplete instead.
func (w *Workshop) Calculate(ctx context.Context, req *CalcRequest) (*CalcResult, error) {
	ctx, span := w.tracer.Start(ctx, "Calculate")
	defer span.End()

	if err := req.Lacing.Validate(); err != nil {
		return nil, err
	}
	ret, err := w.solve(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("rim", ret.Rim.Label()),
		attribute.String("hub", ret.Hub.Label()),
		attribute.Bool("incomplete", ret.Incomplete()))

	if req.Archive && !ret.Incomplete() {
		res, err := w.archive.Upsert(ctx, w.fingerprint(ret, req.Lacing), ret.Lengths)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		ret.Recipe = &res
	}
	return ret, nil
}

func (w *Workshop) solve(ctx context.Context, req *CalcRequest) (*CalcResult, error) {
	ret := &CalcResult{}
	var snapshot *catalog.Catalog
	lookup := func() (*catalog.Catalog, error) {
		if snapshot != nil {
			return snapshot, nil
		}
		var err error
		snapshot, err = w.loader.Catalog(ctx)
		return snapshot, err
	}

	if req.Rim != nil {
		ret.Rim = *req.Rim
	} else {
		c, err := lookup()
		if err != nil {
			return nil, err
		}
		var ok bool
		if ret.Rim, ok = c.Rim(req.RimLabel); !ok {
			ret.Missing = append(ret.Missing, model.PartRim)
		}
	}
	if req.Hub != nil {
		ret.Hub = *req.Hub
	} else {
		c, err := lookup()
		if err != nil {
			return nil, err
		}
		var ok bool
		if ret.Hub, ok = c.Hub(req.HubLabel); !ok {
			ret.Missing = append(ret.Missing, model.PartHub)
		}
	}
	if len(ret.Missing) > 0 {
		w.log.Debug("unresolved parts",
			log.String("rim", req.RimLabel),
			log.String("hub", req.HubLabel),
			log.Any("missing", ret.Missing))
		return ret, nil
	}
	hub := ret.Hub
	if req.Lacing.Type.IsStraightPull() {
		hub = w.calibrated(hub)
	}
	ret.Lengths = spoke.SolveWheel(ret.Rim, hub, req.Lacing)
	return ret, nil
}

// calibrated fills in the configured straight-pull calibration for hub
// sides which carry none. An explicit 0 on the hub is kept.
func (w *Workshop) calibrated(hub model.HubSpec) model.HubSpec {
	if hub.Left.SPOffset == nil {
		hub.Left.SPOffset = &w.spDefault.left
	}
	if hub.Right.SPOffset == nil {
		hub.Right.SPOffset = &w.spDefault.right
	}
	return hub
}

func (w *Workshop) fingerprint(res *CalcResult, lacing model.LacingRequest) model.Fingerprint {
	holes := lacing.Holes
	if holes == 0 {
		holes = res.Rim.Holes
	}
	return model.Fingerprint{
		RimLabel:     res.Rim.Label(),
		HubLabel:     res.Hub.Label(),
		Holes:        holes,
		Crosses:      lacing.Crosses,
		StraightPull: lacing.Type.IsStraightPull(),
	}
}

// StageBuild computes the wheels of req and returns the resulting build.
// Nothing is stored.
func (w *Workshop) StageBuild(ctx context.Context, req *StageRequest) (*model.BuildRecord, error) {
	ctx, span := w.tracer.Start(ctx, "StageBuild")
	defer span.End()

	front, err := w.stageWheel(ctx, &req.Front)
	if err != nil {
		return nil, err
	}
	ret := &model.BuildRecord{
		Customer:   req.Customer,
		Notes:      req.Notes,
		Status:     model.BuildStatusRegistered,
		Front:      front.ref,
		Spoke:      req.Spoke,
		Nipple:     req.Nipple,
		SpokeCount: req.SpokeCount,
	}
	holes := front.holes
	if req.Rear != nil {
		rear, err := w.stageWheel(ctx, req.Rear)
		if err != nil {
			return nil, err
		}
		ret.Rear = rear.ref
		holes = max(holes, rear.holes)
	}
	if ret.SpokeCount == 0 {
		ret.SpokeCount = model.DefaultSpokeCount(holes, ret.IsWheelset())
	}
	return ret, nil
}

type stagedWheel struct {
	ref   model.WheelRef
	holes int
}

func (w *Workshop) stageWheel(ctx context.Context, req *CalcRequest) (*stagedWheel, error) {
	calcReq := *req
	calcReq.Archive = false
	res, err := w.Calculate(ctx, &calcReq)
	if err != nil {
		return nil, err
	}
	ret := &stagedWheel{
		ref: model.WheelRef{
			Rim:     wheelLabel(req.RimLabel, res.Rim),
			Hub:     wheelLabel(req.HubLabel, res.Hub),
			Lengths: res.Lengths,
		},
		holes: req.Lacing.Holes,
	}
	if ret.holes == 0 {
		ret.holes = res.Rim.Holes
	}
	return ret, nil
}

// wheelLabel prefers the catalog label of a resolved part.
func wheelLabel(ref string, part model.Labeled) string {
	if l := part.Label(); l != "" {
		return l
	}
	return ref
}

// RegisterBuild stores build and archives a recipe for every wheel with
// complete lengths. Recipes are written in the build's transaction only if
// the recipe repository takes part in it (see WithRecipesInTx). Otherwise
// they are written after the build was committed, a failed build leaves the
// archive untouched.
func (w *Workshop) RegisterBuild(
	ctx context.Context,
	build *model.BuildRecord,
	lacing model.LacingRequest,
) error {
	ctx, span := w.tracer.Start(ctx, "RegisterBuild")
	defer span.End()

	c, err := w.loader.Catalog(ctx)
	if err != nil {
		return err
	}
	if build.Status == "" {
		build.Status = model.BuildStatusRegistered
	}
	recipes := w.buildRecipes(c, build, lacing)
	err = w.txManager.RunInTx(ctx, func(ctx context.Context) error {
		if err := w.repos.Build().Create(ctx, build); err != nil {
			return fmt.Errorf("create build: %w", err)
		}
		if w.recipesInTx {
			return w.archiveRecipes(ctx, recipes)
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if !w.recipesInTx {
		if err := w.archiveRecipes(ctx, recipes); err != nil {
			w.log.Warn("build stored without recipes",
				log.String("id", build.ID.String()),
				log.ErrorField(err))
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	w.log.Info("build registered",
		log.String("id", build.ID.String()),
		log.String("customer", build.Customer))
	return nil
}

type wheelRecipe struct {
	fp      model.Fingerprint
	lengths model.SpokeLengths
}

func (w *Workshop) buildRecipes(
	c *catalog.Catalog,
	build *model.BuildRecord,
	lacing model.LacingRequest,
) []wheelRecipe {
	var ret []wheelRecipe
	for _, ref := range []model.WheelRef{build.Front, build.Rear} {
		if !ref.Present() || ref.Lengths.IsIncomplete() {
			continue
		}
		fp := model.Fingerprint{
			RimLabel:     ref.Rim,
			HubLabel:     ref.Hub,
			Holes:        lacing.Holes,
			Crosses:      lacing.Crosses,
			StraightPull: lacing.Type.IsStraightPull(),
		}
		if rim, ok := c.Rim(ref.Rim); ok && fp.Holes == 0 {
			fp.Holes = rim.Holes
		}
		if fp.Holes == 0 {
			w.log.Debug("skip recipe without hole count", log.String("rim", ref.Rim))
			continue
		}
		ret = append(ret, wheelRecipe{fp: fp, lengths: ref.Lengths})
	}
	return ret
}

func (w *Workshop) archiveRecipes(ctx context.Context, recipes []wheelRecipe) error {
	for _, r := range recipes {
		if _, err := w.archive.Upsert(ctx, r.fp, r.lengths); err != nil {
			return fmt.Errorf("archive recipe: %w", err)
		}
	}
	return nil
}

func (w *Workshop) Builds(ctx context.Context) ([]*model.BuildRecord, error) {
	return w.repos.Build().LoadAll(ctx)
}

func (w *Workshop) Build(ctx context.Context, id uuid.UUID) (*model.BuildRecord, error) {
	ret, err := w.repos.Build().LoadByID(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNoRows) {
			return nil, fmt.Errorf("build %s: %w", id, model.ErrNotFound)
		}
		return nil, err
	}
	return ret, nil
}

// UpdateStatus stores the new status string. No workflow rules apply.
func (w *Workshop) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	n, err := w.repos.Build().Update(ctx, id, &model.BuildPatch{Status: omit.From(status)})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("build %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// Weight computes the weight breakdown of a stored build.
func (w *Workshop) Weight(ctx context.Context, id uuid.UUID) (*bom.Breakdown, error) {
	ctx, span := w.tracer.Start(ctx, "Weight")
	defer span.End()

	build, err := w.Build(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := w.loader.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	ret := bom.Aggregate(build, c)
	span.SetAttributes(
		attribute.Float64("total", ret.Total),
		attribute.Bool("incomplete", ret.Incomplete()))
	return &ret, nil
}

// Popular lists archived recipes, most frequently built first.
func (w *Workshop) Popular(ctx context.Context, limit int) ([]*model.RecipeEntry, error) {
	return w.archive.Popular(ctx, limit)
}

// ImportCatalog stores all entries of c. Entries with a known label are
// replaced. Returns the number of stored entries.
func (w *Workshop) ImportCatalog(ctx context.Context, c *catalog.Catalog) (int, error) {
	ctx, span := w.tracer.Start(ctx, "ImportCatalog")
	defer span.End()

	repo := w.repos.Catalog()
	err := w.txManager.RunInTx(ctx, func(ctx context.Context) error {
		for i := range c.Rims {
			if err := repo.SaveRim(ctx, &c.Rims[i]); err != nil {
				return fmt.Errorf("rim %s: %w", c.Rims[i].Label(), err)
			}
		}
		for i := range c.Hubs {
			if err := repo.SaveHub(ctx, &c.Hubs[i]); err != nil {
				return fmt.Errorf("hub %s: %w", c.Hubs[i].Label(), err)
			}
		}
		for i := range c.Spokes {
			if err := repo.SaveSpoke(ctx, &c.Spokes[i]); err != nil {
				return fmt.Errorf("spoke %s: %w", c.Spokes[i].Label(), err)
			}
		}
		for i := range c.Nipples {
			if err := repo.SaveNipple(ctx, &c.Nipples[i]); err != nil {
				return fmt.Errorf("nipple %s: %w", c.Nipples[i].Label(), err)
			}
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	w.loader.Invalidate(ctx)
	return c.Size(), nil
}
