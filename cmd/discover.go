package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/renewables-newsroom/internal/session"
)

func newDiscoverCmd() *cobra.Command {
	var (
		flags discoverFlags
		out   string
	)
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Scan portals and write a session artifact of processed articles",
		Long: `Fetches every selected portal, keeps the relevant headlines, drops titles
already in the session or the content store, and rewrites each one as an
original article with category, SEO block and quality metrics.

Portals that yield nothing fall back to their feed, then to synthetic seeds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return err
			}
			opts, err := flags.options()
			if err != nil {
				return err
			}
			s, rep, err := rt.app.Workflow().Discover(cmd.Context(), opts)
			rt.record(rep)
			if err != nil {
				return err
			}
			if err := session.Save(out, s); err != nil {
				return err
			}
			rt.logger.Info("session written", zap.String("path", out), zap.Int("articles", len(s.Articles)))

			w := cmd.OutOrStdout()
			if err := printPortals(w, rep); err != nil {
				return err
			}
			if err := printReports(w, rep); err != nil {
				return err
			}
			fmt.Fprintf(w, "session %s: %d articles, quality %.1f -> %s\n",
				s.Info.SessionID, s.Summary.Total, s.Summary.AverageQuality, out)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&out, "out", DefaultArtifact, "session artifact to write")
	return cmd
}
