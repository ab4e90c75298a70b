package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/diffscope/internal/aggregator"
	"github.com/dshills/diffscope/internal/analyzer"
	"github.com/dshills/diffscope/internal/config"
	"github.com/dshills/diffscope/internal/diffparse"
	"github.com/dshills/diffscope/internal/gitcmd"
	"github.com/dshills/diffscope/internal/grouper"
	"github.com/dshills/diffscope/internal/segmenter"
	"github.com/dshills/diffscope/internal/source"
	"github.com/dshills/diffscope/pkg/types"
)

// Config selects the engine's inputs and behavior.
type Config struct {
	// RepoDir is the repository working tree, used for git commands,
	// analyzer probing, and definition extraction. Empty means the
	// current directory.
	RepoDir string

	// Limits are the segmentation and grouping caps.
	Limits config.Limits

	// Analyzer selects the external symbol analyzer.
	Analyzer analyzer.Options
}

// Stats describes one segmentation run.
type Stats struct {
	Files                  int
	Hunks                  int
	Segments               int
	Changes                int
	GroupsBeforeSimilarity int
	Groups                 int
	AnalyzerUsed           bool
	Duration               time.Duration
}

// Run is the full output of one segmentation: the numbered groups, the raw
// diff they were built from, optional commit metadata, and run statistics.
type Run struct {
	Groups []*types.FileGroup
	Diff   string
	Commit *types.Commit
	Stats  Stats
}

// Engine wires the segmentation pipeline: symbol analysis, diff
// tokenizing, hunk splitting, change aggregation, and group building.
type Engine struct {
	cfg        Config
	aggregator *aggregator.Aggregator
	grouper    *grouper.Grouper
}

// New creates an engine. Zero-valued limits fall back to the defaults.
func New(cfg Config) *Engine {
	if cfg.Limits == (config.Limits{}) {
		cfg.Limits = config.DefaultLimits()
	}
	return &Engine{
		cfg:        cfg,
		aggregator: aggregator.New(cfg.Limits),
		grouper:    grouper.New(cfg.Limits),
	}
}

// Segment decomposes a raw unified diff into review groups. The run is
// deterministic for a given diff and limits. Cancellation is checked
// between pipeline stages, not inside them.
func (e *Engine) Segment(ctx context.Context, diffText string) (*Run, error) {
	started := time.Now()

	if diffText == "" {
		return nil, types.ErrInvalidDiff
	}

	resolved := analyzer.Resolve(ctx, e.cfg.RepoDir, diffText, e.cfg.Analyzer)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files := diffparse.Parse(diffText, resolved.Table)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run := &Run{Diff: diffText}
	run.Stats.AnalyzerUsed = resolved.External
	run.Stats.Files = len(files)

	agg := e.aggregator.Combine(files, func(hunk *types.Hunk) []*types.Segment {
		run.Stats.Hunks++
		segs := segmenter.Split(hunk, resolved.Table)
		run.Stats.Segments += len(segs)
		return segs
	})
	run.Stats.Changes = agg.Total
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !resolved.External {
		e.attachDefinitions(agg)
	}

	groups, before := e.grouper.BuildCounted(agg.ByFile)
	run.Stats.GroupsBeforeSimilarity = before
	run.Stats.Groups = len(groups)
	run.Groups = groups
	run.Stats.Duration = time.Since(started)
	return run, nil
}

// SegmentShow segments already-fetched git show output: the message
// section is parsed for commit metadata, the patch section goes through
// Segment. Callers that hold the show text avoid a second git invocation.
func (e *Engine) SegmentShow(ctx context.Context, show string) (*Run, error) {
	offset := gitcmd.DiffStart(show)
	if offset < 0 {
		return nil, types.ErrInvalidDiff
	}

	run, err := e.Segment(ctx, show[offset:])
	if err != nil {
		return nil, err
	}
	if commit := gitcmd.ParseCommit(show); commit.SHA != "" {
		run.Commit = commit
	}
	return run, nil
}

// SegmentCommit fetches a commit with git and segments its patch. The
// returned run carries the parsed commit metadata alongside the groups.
func (e *Engine) SegmentCommit(ctx context.Context, ref string) (*Run, error) {
	show, err := gitcmd.Show(ctx, e.cfg.RepoDir, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch commit %s: %w", ref, err)
	}

	run, err := e.SegmentShow(ctx, show)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", ref, err)
	}
	return run, nil
}

// attachDefinitions pulls working-tree definitions for changes whose symbol
// resolved, compensating for the weaker heuristic symbol table. Failures
// attach nothing.
func (e *Engine) attachDefinitions(agg *aggregator.Result) {
	for _, path := range agg.Files {
		for _, change := range agg.ByFile[path] {
			if change.Symbol == "" || change.Symbol == types.UnknownSymbol {
				continue
			}
			start, _, ok := diffparse.NewStart(change.Header)
			if !ok {
				continue
			}
			if def, ok := source.Definition(e.cfg.RepoDir, change.File, start); ok {
				change.Definition = def
			}
		}
	}
}
