package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/renewables-newsroom/internal/publish"
	"github.com/JakeFAU/renewables-newsroom/internal/session"
)

func newPublishCmd() *cobra.Command {
	var (
		flags   publishFlags
		in, out string
		list    bool
	)
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Write the articles of a session artifact to the content store",
		Long: `Publishes the selected articles one at a time. A title whose prefix is
already in the store is reported as skipped_duplicate, so re-running publish
on the same artifact creates nothing new.

--list prints the articles the selection flags match and exits.`,
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
			loaded, err := session.Load(in)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if list {
				return printSelection(w, publish.Select(loaded.Articles, opts.Selection))
			}

			published, rep, err := rt.app.Workflow().Publish(cmd.Context(), loaded, opts)
			rt.record(rep)
			if err != nil {
				return err
			}
			dest := out
			if dest == "" {
				dest = in
			}
			if err := session.Save(dest, published); err != nil {
				return err
			}
			if err := printPublishSummary(w, rep.Results); err != nil {
				return err
			}
			fmt.Fprintf(w, "mode %s -> %s\n", opts.Mode, dest)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&in, "in", DefaultArtifact, "session artifact to read")
	cmd.Flags().StringVar(&out, "out", "", "artifact to write with the publication block (default: --in)")
	cmd.Flags().BoolVar(&list, "list", false, "list matching articles without publishing")
	return cmd
}
