package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/renewables-newsroom/internal/enrich"
	"github.com/JakeFAU/renewables-newsroom/internal/session"
	"github.com/JakeFAU/renewables-newsroom/internal/workflow"
)

func newEnrichCmd() *cobra.Command {
	var in, out, strategy string
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Append an analysis section to every article of a session artifact",
		Long: fmt.Sprintf(`Applies one analysis strategy to each article and writes the result to a new
artifact. Articles already enriched are skipped; articles that fail keep their
original content.

Strategies: %s.`, strings.Join(enrich.New(nil).Names(), ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return err
			}
			loaded, err := session.Load(in)
			if err != nil {
				return err
			}
			enriched, rep, err := rt.app.Workflow().Enrich(cmd.Context(), loaded, strategy)
			rt.record(rep)
			if err != nil {
				return err
			}
			dest := out
			if dest == "" {
				dest = workflow.AnalyzedPath(in)
			}
			if err := session.Save(dest, enriched); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if err := printReports(w, rep); err != nil {
				return err
			}
			fmt.Fprintf(w, "strategy %s -> %s\n", strategy, dest)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", DefaultArtifact, "session artifact to read")
	cmd.Flags().StringVar(&out, "out", "", "artifact to write (default: <in>_analizadas.json)")
	cmd.Flags().StringVar(&strategy, "strategy", "", "analysis strategy to apply")
	return cmd
}
