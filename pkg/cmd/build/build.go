package build

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/prowheel/wheellab/pkg/bom"
	"github.com/prowheel/wheellab/pkg/cmd/util"
	"github.com/prowheel/wheellab/pkg/model"
	"github.com/prowheel/wheellab/pkg/service"
)

func NewBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "registers and inspects wheel builds",
	}
	cmd.AddCommand(newCreateCmd(), newListCmd(), newWeightCmd(), newStatusCmd())
	return cmd
}

type createOptions struct {
	customer   string
	notes      string
	frontRim   string
	frontHub   string
	rearRim    string
	rearHub    string
	spoke      string
	nipple     string
	spokeCount int
	holes      int
	crosses    int
	lacing     string
	rounding   string
}

func (o *createOptions) request() (*service.StageRequest, model.LacingRequest, error) {
	lacingType, err := model.ParseLacingType(o.lacing)
	if err != nil {
		return nil, model.LacingRequest{}, err
	}
	rounding, err := model.ParseRoundingMode(o.rounding)
	if err != nil {
		return nil, model.LacingRequest{}, err
	}
	lacing := model.LacingRequest{
		Holes:    o.holes,
		Crosses:  o.crosses,
		Type:     lacingType,
		Rounding: rounding,
	}
	req := &service.StageRequest{
		Customer:   o.customer,
		Notes:      o.notes,
		Front:      service.CalcRequest{RimLabel: o.frontRim, HubLabel: o.frontHub, Lacing: lacing},
		Spoke:      o.spoke,
		Nipple:     o.nipple,
		SpokeCount: o.spokeCount,
	}
	if o.rearRim != "" {
		req.Rear = &service.CalcRequest{RimLabel: o.rearRim, HubLabel: o.rearHub, Lacing: lacing}
	}
	return req, lacing, nil
}

func newCreateCmd() *cobra.Command {
	opts := createOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "computes and registers a build",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, lacing, err := opts.request()
			if err != nil {
				return err
			}
			env, err := util.SetupEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			staged, err := env.Workshop.StageBuild(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := env.Workshop.RegisterBuild(cmd.Context(), staged, lacing); err != nil {
				return err
			}
			return printBuilds(cmd.OutOrStdout(), []*model.BuildRecord{staged})
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.customer, "customer", "", "customer name")
	f.StringVar(&opts.notes, "notes", "", "free text notes")
	f.StringVar(&opts.frontRim, "front-rim", "", "catalog label of the front rim")
	f.StringVar(&opts.frontHub, "front-hub", "", "catalog label of the front hub")
	f.StringVar(&opts.rearRim, "rear-rim", "", "catalog label of the rear rim (wheelset)")
	f.StringVar(&opts.rearHub, "rear-hub", "", "catalog label of the rear hub")
	f.StringVar(&opts.spoke, "spoke", "", "catalog label of the spoke")
	f.StringVar(&opts.nipple, "nipple", "", "catalog label of the nipple")
	f.IntVar(&opts.spokeCount, "spoke-count", 0, "total spoke count, 0 derives it from the rims")
	f.IntVar(&opts.holes, "holes", 0, "hole count, 0 uses the rim's")
	f.IntVar(&opts.crosses, "crosses", 3, "cross count (0..4)")
	f.StringVar(&opts.lacing, "lacing", "conventional", "lacing type (conventional, straight-pull)")
	f.StringVar(&opts.rounding, "rounding", "none", "rounding mode (none, even, odd)")
	_ = cmd.MarkFlagRequired("front-rim")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "lists all builds, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := util.SetupEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()
			builds, err := env.Workshop.Builds(cmd.Context())
			if err != nil {
				return err
			}
			return printBuilds(cmd.OutOrStdout(), builds)
		},
	}
}

func newWeightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weight <id>",
		Short: "shows the weight breakdown of a build",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.FromString(args[0])
			if err != nil {
				return fmt.Errorf("build id %q: %w", args[0], model.ErrInvalidInput)
			}
			env, err := util.SetupEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()
			b, err := env.Workshop.Weight(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printWeight(cmd.OutOrStdout(), b)
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "sets the status of a build",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.FromString(args[0])
			if err != nil {
				return fmt.Errorf("build id %q: %w", args[0], model.ErrInvalidInput)
			}
			env, err := util.SetupEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()
			return env.Workshop.UpdateStatus(cmd.Context(), id, args[1])
		},
	}
}

func printBuilds(out io.Writer, builds []*model.BuildRecord) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tCUSTOMER\tSTATUS\tFRONT\tREAR\tSPOKES")
	for _, b := range builds {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			b.ID, b.CreatedAt.Format("2006-01-02 15:04"), b.Customer, b.Status,
			wheelColumn(b.Front), wheelColumn(b.Rear), b.SpokeCount)
	}
	return w.Flush()
}

func wheelColumn(ref model.WheelRef) string {
	if !ref.Present() {
		return "-"
	}
	if ref.Lengths.IsIncomplete() {
		return fmt.Sprintf("%s/%s (incomplete)", ref.Rim, ref.Hub)
	}
	return fmt.Sprintf("%s/%s %.1f/%.1f", ref.Rim, ref.Hub, ref.Lengths.Left, ref.Lengths.Right)
}

func printWeight(out io.Writer, b *bom.Breakdown) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEEL\tRIM\tHUB\tSPOKES\tNIPPLES\tTOTAL\tMISSING")
	for i, wheel := range []*bom.Wheel{b.Front, b.Rear} {
		if wheel == nil {
			continue
		}
		name := "front"
		if i == 1 {
			name = "rear"
		}
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f\t%v\n",
			name, wheel.RimMass, wheel.HubMass, wheel.SpokesMass(), wheel.NipplesMass(),
			wheel.Total, wheel.Missing)
	}
	fmt.Fprintf(w, "total\t\t\t\t\t%.1f\t\n", b.Total)
	return w.Flush()
}
