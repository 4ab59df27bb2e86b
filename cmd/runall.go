package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/renewables-newsroom/internal/enrich"
	"github.com/JakeFAU/renewables-newsroom/internal/workflow"
)

func newRunAllCmd() *cobra.Command {
	var (
		disc        discoverFlags
		pub         publishFlags
		strategy    string
		out         string
		skipEnrich  bool
		skipPublish bool
	)
	cmd := &cobra.Command{
		Use:   "run-all",
		Short: "Run discover, enrich and publish back to back",
		Long: `Chains the stages through artifact files: discover writes --out, enrich
writes <out>_analizadas.json and publish reads whichever came last. When enrich
fails the run publishes the discover artifact instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return err
			}
			dopts, err := disc.options()
			if err != nil {
				return err
			}
			popts, err := pub.options()
			if err != nil {
				return err
			}
			res, err := rt.app.Workflow().RunAll(cmd.Context(), workflow.RunOptions{
				Discover:    dopts,
				Strategy:    strategy,
				Publish:     popts,
				SkipEnrich:  skipEnrich,
				SkipPublish: skipPublish,
				Out:         out,
			})
			rt.record(res.Reports...)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, r := range res.Reports {
				if r.Stage == workflow.StageDiscover {
					if err := printPortals(w, r); err != nil {
						return err
					}
				}
			}
			if err := printReports(w, res.Reports...); err != nil {
				return err
			}
			for _, r := range res.Reports {
				if r.Stage == workflow.StagePublish {
					if err := printPublishSummary(w, r.Results); err != nil {
						return err
					}
				}
			}
			fmt.Fprintf(w, "final artifact -> %s\n", res.Path)
			return nil
		},
	}
	disc.bind(cmd)
	pub.bind(cmd)
	cmd.Flags().StringVar(&strategy, "strategy", enrich.StrategyAIImpact, "analysis strategy for the enrich stage")
	cmd.Flags().StringVar(&out, "out", DefaultArtifact, "discover artifact to write")
	cmd.Flags().BoolVar(&skipEnrich, "skip-enrich", false, "go straight from discover to publish")
	cmd.Flags().BoolVar(&skipPublish, "skip-publish", false, "stop after enrich")
	return cmd
}
