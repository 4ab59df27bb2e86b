package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/JakeFAU/renewables-newsroom/internal/pipeline"
	"github.com/JakeFAU/renewables-newsroom/internal/publish"
)

// PruneOptions select pipeline-authored articles to delete. Exactly one of
// Inactive, All, OlderThanDays or IDs must be set.
type PruneOptions struct {
	Inactive      bool
	All           bool
	OlderThanDays int
	IDs           string
	ListOnly      bool
}

// PruneResult reports what matched, what was removed and how many
// pipeline-authored articles are left.
type PruneResult struct {
	Criterion string
	Matched   []pipeline.StoredArticle
	Deleted   int
	Remaining int
}

// ErrNoCriterion means PruneOptions selected nothing.
var ErrNoCriterion = errors.New("one of inactive, all, older-than-days or ids is required")

func (o *Orchestrator) pruneFilter(opts PruneOptions) (pipeline.ArticleFilter, string, error) {
	filter := pipeline.ArticleFilter{Author: o.cfg.Author}
	set := 0
	criterion := ""
	if opts.Inactive {
		set++
		filter.InactiveOnly = true
		criterion = "inactive"
	}
	if opts.All {
		set++
		criterion = "all"
	}
	if opts.OlderThanDays != 0 {
		set++
		if opts.OlderThanDays < 0 {
			return filter, "", &pipeline.InputError{What: "older-than-days", Err: fmt.Errorf("%d is negative", opts.OlderThanDays)}
		}
		filter.OlderThan = o.deps.Clock.Now().UTC().Add(-time.Duration(opts.OlderThanDays) * 24 * time.Hour)
		criterion = fmt.Sprintf("older than %d days", opts.OlderThanDays)
	}
	if opts.IDs != "" {
		set++
		ids, err := publish.ParseList(opts.IDs)
		if err != nil {
			return filter, "", err
		}
		for _, id := range ids {
			filter.IDs = append(filter.IDs, strconv.Itoa(id))
		}
		criterion = "ids " + opts.IDs
	}
	switch set {
	case 0:
		return filter, "", &pipeline.InputError{What: "prune", Err: ErrNoCriterion}
	case 1:
		return filter, criterion, nil
	default:
		return filter, "", &pipeline.InputError{What: "prune", Err: errors.New("criteria are mutually exclusive")}
	}
}

// Prune lists the matching articles and, unless ListOnly, deletes them.
func (o *Orchestrator) Prune(ctx context.Context, opts PruneOptions) (PruneResult, error) {
	start := time.Now()
	filter, criterion, err := o.pruneFilter(opts)
	if err != nil {
		return PruneResult{}, err
	}
	res := PruneResult{Criterion: criterion}
	res.Matched, err = o.deps.Store.ListArticles(ctx, filter)
	if err != nil {
		return res, &pipeline.StoreError{Op: "list", Title: criterion, Err: err}
	}
	if !opts.ListOnly && len(res.Matched) > 0 {
		ids := make([]string, 0, len(res.Matched))
		for _, a := range res.Matched {
			ids = append(ids, a.ID)
		}
		res.Deleted, err = o.deps.Store.DeleteArticles(ctx, ids)
		if err != nil {
			return res, &pipeline.StoreError{Op: "delete", Title: criterion, Err: err}
		}
		o.finish(&Report{Stage: StagePrune}, start)
	}
	res.Remaining, err = o.remaining(ctx)
	return res, err
}

func (o *Orchestrator) remaining(ctx context.Context) (int, error) {
	left, err := o.deps.Store.ListArticles(ctx, pipeline.ArticleFilter{Author: o.cfg.Author})
	if err != nil {
		return 0, &pipeline.StoreError{Op: "count", Title: o.cfg.Author, Err: err}
	}
	return len(left), nil
}
