package workflow

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/renewables-newsroom/internal/session"
)

// RunOptions chain every stage through artifact files.
type RunOptions struct {
	Discover    DiscoverOptions
	Strategy    string
	Publish     PublishOptions
	SkipEnrich  bool
	SkipPublish bool
	// Out is the discover artifact. Enrich writes AnalyzedPath(Out).
	Out string
}

// RunResult lists the stage reports in execution order and the final artifact.
type RunResult struct {
	Reports []Report
	Path    string
	Session *session.Session
}

// AnalyzedPath derives the enrich artifact name: noticias.json becomes
// noticias_analizadas.json.
func AnalyzedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_analizadas" + ext
}

// RunAll runs discover, then enrich and publish unless skipped. Each stage
// reads the artifact the previous one wrote. An enrich failure falls back to
// the discover artifact.
func (o *Orchestrator) RunAll(ctx context.Context, opts RunOptions) (RunResult, error) {
	var res RunResult
	if !opts.SkipEnrich {
		if err := o.deps.Enricher.Validate(opts.Strategy); err != nil {
			return res, err
		}
	}

	s, rep, err := o.Discover(ctx, opts.Discover)
	res.Reports = append(res.Reports, rep)
	if err != nil {
		return res, err
	}
	if err := session.Save(opts.Out, s); err != nil {
		return res, err
	}
	res.Path, res.Session = opts.Out, s

	if !opts.SkipEnrich {
		enriched, err := o.enrichFile(ctx, opts.Out, AnalyzedPath(opts.Out), opts.Strategy, &res)
		switch {
		case ctx.Err() != nil:
			return res, ctx.Err()
		case err != nil:
			o.logger.Warn("enrich failed, continuing with discover artifact", zap.Error(err))
		default:
			res.Path, res.Session = AnalyzedPath(opts.Out), enriched
		}
	}

	if opts.SkipPublish {
		return res, nil
	}
	loaded, err := session.Load(res.Path)
	if err != nil {
		return res, err
	}
	published, rep, err := o.Publish(ctx, loaded, opts.Publish)
	res.Reports = append(res.Reports, rep)
	if err != nil {
		return res, err
	}
	if err := session.Save(res.Path, published); err != nil {
		return res, err
	}
	res.Session = published
	return res, nil
}

func (o *Orchestrator) enrichFile(ctx context.Context, in, out, strategy string, res *RunResult) (*session.Session, error) {
	loaded, err := session.Load(in)
	if err != nil {
		return nil, err
	}
	enriched, rep, err := o.Enrich(ctx, loaded, strategy)
	res.Reports = append(res.Reports, rep)
	if err != nil {
		return nil, err
	}
	if err := session.Save(out, enriched); err != nil {
		return nil, err
	}
	return enriched, nil
}
