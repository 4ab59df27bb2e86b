package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
	"github.com/JakeFAU/renewables-newsroom/internal/publish"
	"github.com/JakeFAU/renewables-newsroom/internal/workflow"
)

var publishStatuses = []pipeline.PublishStatus{
	pipeline.StatusPublished,
	pipeline.StatusDraft,
	pipeline.StatusSimulated,
	pipeline.StatusSkippedDuplicate,
	pipeline.StatusFailed,
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printReports(w io.Writer, reports ...workflow.Report) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "STAGE\tOK\tSKIPPED\tFAILED\tDURATION")
	for _, r := range reports {
		c := r.Counts()
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", r.Stage,
			c[pipeline.OutcomeOK], c[pipeline.OutcomeSkipped], c[pipeline.OutcomeFailed],
			r.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}

func printPortals(w io.Writer, r workflow.Report) error {
	if len(r.Portals) == 0 {
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "PORTAL\tITEMS\tATTEMPTS\tSTRATEGY\tFALLBACK")
	for _, p := range r.Portals {
		strategy := p.Strategy
		if strategy == "" {
			strategy = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", p.Portal, p.Items, p.Attempts, strategy, p.Fallback)
	}
	return tw.Flush()
}

func countStatuses(results []pipeline.PublishResult) map[pipeline.PublishStatus]int {
	counts := make(map[pipeline.PublishStatus]int, len(publishStatuses))
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

func printPublishSummary(w io.Writer, results []pipeline.PublishResult) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tSTATUS\tCATEGORY\tID\tTITLE")
	for i, r := range results {
		id := r.ArticleID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, r.Status, r.CategoryName, id, pipeline.Prefix(r.Title, 60))
	}
	fmt.Fprintln(tw)
	counts := countStatuses(results)
	for _, s := range publishStatuses {
		fmt.Fprintf(tw, "%s\t%d\n", s, counts[s])
	}
	return tw.Flush()
}

func printSelection(w io.Writer, selected []publish.Selected) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tCATEGORY\tQUALITY\tIMAGE\tTITLE")
	for _, s := range selected {
		image := "no"
		if s.Article.Media.HasImage() {
			image = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%s\t%s\n", s.Index, s.Article.CategoryName,
			s.Article.Metrics.SEOScore, image, pipeline.Prefix(s.Article.Title, 60))
	}
	return tw.Flush()
}

func printPrune(w io.Writer, res workflow.PruneResult, listOnly bool) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tACTIVE\tPUBLISHED\tTITLE")
	for _, a := range res.Matched {
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", a.ID, a.Active, a.PublishedAt.Format("2006-01-02"), pipeline.Prefix(a.Title, 60))
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "criterion\t%s\n", res.Criterion)
	fmt.Fprintf(tw, "matched\t%d\n", len(res.Matched))
	if !listOnly {
		fmt.Fprintf(tw, "deleted\t%d\n", res.Deleted)
	}
	fmt.Fprintf(tw, "remaining\t%d\n", res.Remaining)
	return tw.Flush()
}
