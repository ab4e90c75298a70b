package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/diffscope/internal/analyzer"
	"github.com/dshills/diffscope/internal/diffparse"
	"github.com/dshills/diffscope/internal/engine"
	"github.com/dshills/diffscope/internal/gitcmd"
	"github.com/dshills/diffscope/internal/review"
	"github.com/dshills/diffscope/internal/storage"
)

func newSegmentCmd() *cobra.Command {
	opts := &rootOptions{}
	var patchFile string

	cmd := &cobra.Command{
		Use:   "segment [ref]",
		Short: "Segment one commit (or a patch file) into review groups",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := "HEAD"
			if len(args) > 0 {
				ref = args[0]
			}
			return runSegment(cmd.Context(), opts, ref, patchFile)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&patchFile, "patch", "", "segment a patch file instead of a commit")
	flags.StringVarP(&opts.gitDir, "git-dir", "C", "", "git repository directory")
	flags.StringVarP(&opts.outputDir, "output-dir", "o", "review-context", "review-context output directory")
	flags.BoolVar(&opts.noAnalyzer, "no-analyzer", false, "skip the external analyzer, use built-in heuristics")
	flags.StringVar(&opts.analyzerCmd, "analyzer-cmd", "", "external analyzer command (default semcode)")
	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.StringVar(&opts.dbPath, "db", "", "persist the run to this SQLite store")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress the console summary")
	return cmd
}

func runSegment(ctx context.Context, opts *rootOptions, ref, patchFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	eng := engine.New(engine.Config{
		RepoDir: opts.gitDir,
		Limits:  cfg.Limits,
		Analyzer: analyzer.Options{
			Command:  cfg.Analyzer,
			Disabled: opts.noAnalyzer,
		},
	})

	var (
		raw          string
		run          *engine.Run
		changedFiles []string
	)

	if patchFile != "" {
		raw, run, changedFiles, err = segmentPatch(ctx, eng, patchFile)
	} else {
		raw, run, changedFiles, err = segmentRef(ctx, eng, opts.gitDir, ref)
	}
	if err != nil {
		return err
	}

	if err := review.Write(opts.outputDir, raw, run, changedFiles); err != nil {
		return err
	}

	if opts.dbPath != "" {
		if err := persistRun(ctx, opts.dbPath, opts.gitDir, run); err != nil {
			return err
		}
	}

	if !opts.quiet {
		review.Summary(os.Stdout, run, cfg.Limits, opts.outputDir)
	}
	return nil
}

// segmentRef fetches a commit via git once and segments the show output.
func segmentRef(ctx context.Context, eng *engine.Engine, gitDir, ref string) (string, *engine.Run, []string, error) {
	raw, err := gitcmd.Show(ctx, gitDir, ref)
	if err != nil {
		return "", nil, nil, err
	}
	run, err := eng.SegmentShow(ctx, raw)
	if err != nil {
		return "", nil, nil, fmt.Errorf("commit %s: %w", ref, err)
	}
	changedFiles, err := gitcmd.ChangedFiles(ctx, gitDir, ref)
	if err != nil {
		return "", nil, nil, err
	}
	return raw, run, changedFiles, nil
}

// segmentPatch segments a saved patch file. Commit metadata is parsed from
// the file when present; changed files come from the diff headers.
func segmentPatch(ctx context.Context, eng *engine.Engine, patchFile string) (string, *engine.Run, []string, error) {
	data, err := os.ReadFile(patchFile)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to read patch file: %w", err)
	}
	raw := string(data)

	offset := gitcmd.DiffStart(raw)
	if offset < 0 {
		return "", nil, nil, fmt.Errorf("no diff found in %s", patchFile)
	}

	run, err := eng.SegmentShow(ctx, raw)
	if err != nil {
		return "", nil, nil, err
	}

	var changedFiles []string
	for _, fc := range diffparse.Parse(raw[offset:], nil) {
		changedFiles = append(changedFiles, fc.Path)
	}
	return raw, run, changedFiles, nil
}

func persistRun(ctx context.Context, dbPath, repoDir string, run *engine.Run) error {
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rec, groups := storage.NewRunRecord(run, repoDir)
	if err := store.SaveRun(ctx, rec, groups); err != nil {
		return err
	}
	fmt.Printf("Run saved: %s\n", rec.ID)
	return nil
}
