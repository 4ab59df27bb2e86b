package cmd

import (
	"github.com/spf13/cobra"

	"github.com/JakeFAU/renewables-newsroom/internal/workflow"
)

func newPruneCmd() *cobra.Command {
	var opts workflow.PruneOptions
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete pipeline-authored articles from the content store",
		Long: `Removes articles written by the configured author. Exactly one criterion is
required: --inactive, --all, --older-than-days or --ids. --list shows the
matches without deleting them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return err
			}
			rt.state.SetStage(workflow.StagePrune)
			res, err := rt.app.Workflow().Prune(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printPrune(cmd.OutOrStdout(), res, opts.ListOnly)
		},
	}
	fs := cmd.Flags()
	fs.BoolVar(&opts.Inactive, "inactive", false, "only inactive articles")
	fs.BoolVar(&opts.All, "all", false, "every article by the configured author")
	fs.IntVar(&opts.OlderThanDays, "older-than-days", 0, "articles published more than N days ago")
	fs.StringVar(&opts.IDs, "ids", "", "store IDs, e.g. 12,14 or 10-20")
	fs.BoolVar(&opts.ListOnly, "list", false, "list matches without deleting")
	return cmd
}
