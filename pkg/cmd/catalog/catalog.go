package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/prowheel/wheellab/log"
	partsCatalog "github.com/prowheel/wheellab/pkg/catalog"
	"github.com/prowheel/wheellab/pkg/cmd/util"
	"github.com/prowheel/wheellab/pkg/config"
	"github.com/prowheel/wheellab/pkg/model"
	"github.com/prowheel/wheellab/pkg/repository/yamlfile"
)

var ErrNoCatalogFile = errors.New("--catalog-file required")

func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "manages the parts catalog",
	}
	cmd.AddCommand(newImportCmd(), newListCmd(), newWatchCmd())
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "imports rims, hubs, spokes and nipples from a catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			c, err := yamlfile.Parse(raw)
			if err != nil {
				return err
			}
			env, err := util.SetupEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()
			n, err := env.Workshop.ImportCatalog(cmd.Context(), c)
			if err != nil {
				return err
			}
			log.Info("catalog imported", log.String("file", args[0]), log.Int("entries", n))
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "list [rim|hub|spoke|nipple]",
		Short:     "lists the catalog entries",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"rim", "hub", "spoke", "nipple"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := model.PartKinds
			if len(args) == 1 {
				kinds = []model.PartKind{model.PartKind(args[0])}
			}
			env, err := util.SetupEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()
			c, err := env.Workshop.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			return printCatalog(cmd.OutOrStdout(), c, kinds)
		},
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "reports changes of the catalog file until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.CatalogFile == "" {
				return ErrNoCatalogFile
			}
			return watchCatalog(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func watchCatalog(ctx context.Context, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	// the watch is driven here, not by the environment
	config.WatchCatalog = false
	env, err := util.SetupEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	report := func() {
		env.Workshop.InvalidateCatalog(ctx)
		c, err := env.Workshop.Catalog(ctx)
		if err != nil {
			log.Warn("could not read catalog", log.ErrorField(err))
			return
		}
		fmt.Fprintf(out, "%s: %d rims, %d hubs, %d spokes, %d nipples\n",
			env.CatalogFile.Path(), len(c.Rims), len(c.Hubs), len(c.Spokes), len(c.Nipples))
	}
	report()
	return env.CatalogFile.Watch(ctx, report)
}

func printCatalog(out io.Writer, c *partsCatalog.Catalog, kinds []model.PartKind) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, kind := range kinds {
		switch kind {
		case model.PartRim:
			fmt.Fprintln(w, "RIM\tERD\tHOLES\tMASS")
			for _, r := range c.Rims {
				fmt.Fprintf(w, "%s\t%.1f\t%d\t%.1f\n", r.Label(), r.ERD, r.Holes, r.Mass)
			}
		case model.PartHub:
			fmt.Fprintln(w, "HUB\tLEFT PCD/OFFSET\tRIGHT PCD/OFFSET\tMASS")
			for _, h := range c.Hubs {
				fmt.Fprintf(w, "%s\t%.1f/%.1f\t%.1f/%.1f\t%.1f\n", h.Label(),
					h.Left.FlangeDiameter, h.Left.Offset,
					h.Right.FlangeDiameter, h.Right.Offset, h.Mass)
			}
		case model.PartSpoke:
			fmt.Fprintln(w, "SPOKE\tMASS")
			for _, s := range c.Spokes {
				fmt.Fprintf(w, "%s\t%.2f\n", s.Label(), s.Mass)
			}
		case model.PartNipple:
			fmt.Fprintln(w, "NIPPLE\tMASS")
			for _, n := range c.Nipples {
				fmt.Fprintf(w, "%s\t%.2f\n", n.Label(), n.Mass)
			}
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
