package calc

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/prowheel/wheellab/pkg/cmd/util"
	"github.com/prowheel/wheellab/pkg/model"
	"github.com/prowheel/wheellab/pkg/service"
)

type calcOptions struct {
	rimLabel       string
	hubLabel       string
	erd            float64
	holes          int
	holesSet       bool
	crosses        int
	leftPCD        float64
	leftOffset     float64
	rightPCD       float64
	rightOffset    float64
	leftSPOffset   float64
	leftSPSet      bool
	rightSPOffset  float64
	rightSPSet     bool
	lacing         string
	rounding       string
	holeCorrection float64
	archive        bool
}

func NewCalcCmd() *cobra.Command {
	opts := calcOptions{}
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "computes the spoke lengths of a wheel",
		Long: `Computes the left and right spoke lengths of a wheel.
Rim and hub are either looked up in the catalog (--rim, --hub) or
given by their dimensions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.holesSet = cmd.Flags().Changed("holes")
			opts.leftSPSet = cmd.Flags().Changed("left-sp-offset")
			opts.rightSPSet = cmd.Flags().Changed("right-sp-offset")
			return runCalc(cmd.Context(), cmd.OutOrStdout(), &opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.rimLabel, "rim", "", "catalog label of the rim")
	f.StringVar(&opts.hubLabel, "hub", "", "catalog label of the hub")
	f.Float64Var(&opts.erd, "erd", 601, "effective rim diameter (mm)")
	f.IntVar(&opts.holes, "holes", 28, "number of spoke holes")
	f.IntVar(&opts.crosses, "crosses", 3, "cross count (0..4)")
	f.Float64Var(&opts.leftPCD, "left-pcd", 40.8, "left flange pitch circle diameter (mm)")
	f.Float64Var(&opts.leftOffset, "left-offset", 28.0, "left flange offset (mm)")
	f.Float64Var(&opts.rightPCD, "right-pcd", 36.0, "right flange pitch circle diameter (mm)")
	f.Float64Var(&opts.rightOffset, "right-offset", 40.2, "right flange offset (mm)")
	f.Float64Var(&opts.leftSPOffset, "left-sp-offset", 0,
		"left straight-pull calibration (mm), --sp-offset-left if not set")
	f.Float64Var(&opts.rightSPOffset, "right-sp-offset", 0,
		"right straight-pull calibration (mm), --sp-offset-right if not set")
	f.StringVar(&opts.lacing, "lacing", "conventional", "lacing type (conventional, straight-pull)")
	f.StringVar(&opts.rounding, "rounding", "none", "rounding mode (none, even, odd)")
	f.Float64Var(&opts.holeCorrection, "hole-correction", 0,
		"hole diameter correction (mm), conventional lacing only")
	f.BoolVar(&opts.archive, "archive", false, "store the result in the recipe archive")
	return cmd
}

func (o *calcOptions) request() (*service.CalcRequest, error) {
	lacingType, err := model.ParseLacingType(o.lacing)
	if err != nil {
		return nil, err
	}
	rounding, err := model.ParseRoundingMode(o.rounding)
	if err != nil {
		return nil, err
	}
	req := &service.CalcRequest{
		RimLabel: o.rimLabel,
		HubLabel: o.hubLabel,
		Lacing: model.LacingRequest{
			Crosses:        o.crosses,
			Type:           lacingType,
			HoleCorrection: o.holeCorrection,
			Rounding:       rounding,
		},
		Archive: o.archive,
	}
	if o.rimLabel == "" {
		req.Rim = &model.RimSpec{Brand: "custom", Model: fmt.Sprintf("ERD %g", o.erd),
			ERD: o.erd, Holes: o.holes}
	} else if o.holesSet {
		// overrides the hole count of the catalog rim
		req.Lacing.Holes = o.holes
	}
	if o.hubLabel == "" {
		req.Hub = &model.HubSpec{
			Brand: "custom",
			Model: fmt.Sprintf("%g/%g", o.leftPCD, o.rightPCD),
			Left:  model.HubSide{FlangeDiameter: o.leftPCD, Offset: o.leftOffset},
			Right: model.HubSide{FlangeDiameter: o.rightPCD, Offset: o.rightOffset},
		}
		if o.leftSPSet {
			req.Hub.Left.SPOffset = &o.leftSPOffset
		}
		if o.rightSPSet {
			req.Hub.Right.SPOffset = &o.rightSPOffset
		}
	}
	return req, nil
}

func runCalc(ctx context.Context, out io.Writer, opts *calcOptions) error {
	req, err := opts.request()
	if err != nil {
		return err
	}
	env, err := util.SetupEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	res, err := env.Workshop.Calculate(ctx, req)
	if err != nil {
		return err
	}
	return printResult(out, res)
}

func printResult(out io.Writer, res *service.CalcResult) error {
	if len(res.Missing) > 0 {
		_, err := fmt.Fprintf(out, "incomplete: unresolved %v\n", res.Missing)
		return err
	}
	if res.Incomplete() {
		_, err := fmt.Fprintln(out, "incomplete: ERD, flange diameter and holes are required")
		return err
	}
	_, err := fmt.Fprintf(out, "rim:   %s\nhub:   %s\nleft:  %.1f mm\nright: %.1f mm\n",
		res.Rim.Label(), res.Hub.Label(), res.Lengths.Left, res.Lengths.Right)
	if err != nil {
		return err
	}
	if res.Recipe != nil {
		_, err = fmt.Fprintf(out, "recipe %s (hits: %d)\n",
			res.Recipe.Outcome, res.Recipe.HitCount)
	}
	return err
}
