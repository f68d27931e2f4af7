package recipe

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/prowheel/wheellab/pkg/cmd/util"
	"github.com/prowheel/wheellab/pkg/model"
)

func NewRecipeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "inspects the recipe archive",
	}
	cmd.AddCommand(newListCmd())
	return cmd
}

func newListCmd() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "lists archived recipes, most frequently built first",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := util.SetupEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()
			entries, err := env.Workshop.Popular(cmd.Context(), top)
			if err != nil {
				return err
			}
			return printRecipes(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVar(&top, "top", 0, "show only the N most frequent recipes (0: all)")
	return cmd
}

func printRecipes(out io.Writer, entries []*model.RecipeEntry) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RIM\tHUB\tHOLES\tCROSSES\tLACING\tLEFT\tRIGHT\tHITS")
	for _, e := range entries {
		lacing := model.LacingConventional
		if e.StraightPull {
			lacing = model.LacingStraightPull
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%.1f\t%.1f\t%d\n",
			e.RimLabel, e.HubLabel, e.Holes, e.Crosses, lacing, e.Left, e.Right, e.HitCount)
	}
	return w.Flush()
}
