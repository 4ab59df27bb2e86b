package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
	"github.com/JakeFAU/renewables-newsroom/internal/portal"
	"github.com/JakeFAU/renewables-newsroom/internal/publish"
	"github.com/JakeFAU/renewables-newsroom/internal/workflow"
)

// DefaultArtifact is where discover writes and the later stages read by default.
const DefaultArtifact = "shared_memory/noticias_estefani.json"

type discoverFlags struct {
	maxItems     int
	mode         string
	portalFilter string
	withImages   bool
}

func (f *discoverFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.maxItems, "max-items", 0, "maximum articles to produce (default depends on --mode)")
	fs.StringVar(&f.mode, "mode", string(workflow.ModeComplete), "discovery depth: rapido, completo or exhaustivo")
	fs.StringVar(&f.portalFilter, "portal-filter", portal.FilterAll, "portals to scan: all, argentina or regional")
	fs.BoolVar(&f.withImages, "with-images", false, "attach an image to every article")
}

func (f *discoverFlags) options() (workflow.DiscoverOptions, error) {
	if f.maxItems < 0 {
		return workflow.DiscoverOptions{}, &pipeline.InputError{What: "max-items", Err: errors.New("must not be negative")}
	}
	return workflow.DiscoverOptions{
		MaxItems:     f.maxItems,
		Mode:         workflow.DiscoverMode(f.mode),
		PortalFilter: f.portalFilter,
		WithImages:   f.withImages,
	}, nil
}

type publishFlags struct {
	draft         bool
	dryRun        bool
	skipImages    bool
	indices       string
	titleContains string
	category      string
}

func (f *publishFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&f.draft, "draft", false, "create articles inactive")
	fs.BoolVar(&f.dryRun, "dry-run", false, "report what would be published without touching the store")
	fs.BoolVar(&f.skipImages, "skip-images", false, "publish without media")
	fs.StringVar(&f.indices, "indices", "", "1-based article positions, e.g. 1,3,5 or 1-3")
	fs.StringVar(&f.titleContains, "title-contains", "", "only articles whose title contains this text")
	fs.StringVar(&f.category, "category", "", "only articles assigned to this category")
}

func (f *publishFlags) options() (workflow.PublishOptions, error) {
	if f.draft && f.dryRun {
		return workflow.PublishOptions{}, &pipeline.InputError{What: "draft, dry-run", Err: errors.New("flags are mutually exclusive")}
	}
	mode := publish.ModePublish
	switch {
	case f.dryRun:
		mode = publish.ModeDryRun
	case f.draft:
		mode = publish.ModeDraft
	}
	sel := publish.Selection{TitleContains: f.titleContains, Category: f.category}
	if f.indices != "" {
		idx, err := publish.ParseList(f.indices)
		if err != nil {
			return workflow.PublishOptions{}, err
		}
		sel.Indices = idx
	}
	return workflow.PublishOptions{
		Options:   publish.Options{Mode: mode, SkipImages: f.skipImages},
		Selection: sel,
	}, nil
}
