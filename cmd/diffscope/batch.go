package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newBatchCmd() *cobra.Command {
	opts := &rootOptions{}
	var jobs int

	cmd := &cobra.Command{
		Use:   "batch <ref-file>",
		Short: "Segment many commits listed in a file, one ref per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), opts, args[0], jobs)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&jobs, "jobs", "j", 4, "number of commits segmented concurrently")
	flags.StringVarP(&opts.gitDir, "git-dir", "C", "", "git repository directory")
	flags.StringVarP(&opts.outputDir, "output-dir", "o", "review-context", "parent directory for per-ref output")
	flags.BoolVar(&opts.noAnalyzer, "no-analyzer", false, "skip the external analyzer, use built-in heuristics")
	flags.StringVar(&opts.analyzerCmd, "analyzer-cmd", "", "external analyzer command (default semcode)")
	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.StringVar(&opts.dbPath, "db", "", "persist the runs to this SQLite store")
	return cmd
}

// runBatch segments every ref in the list with a bounded worker pool.
// Per-ref failures are logged and counted rather than aborting the batch;
// the command exits non-zero when any ref failed.
func runBatch(ctx context.Context, opts *rootOptions, refFile string, jobs int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if jobs < 1 {
		jobs = 1
	}

	refs, err := readRefs(refFile)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return fmt.Errorf("no refs found in %s", refFile)
	}

	var failed atomic.Int64
	group, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, jobs)

	for _, ref := range refs {
		group.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}

			refOpts := *opts
			refOpts.outputDir = filepath.Join(opts.outputDir, sanitizeRef(ref))
			refOpts.quiet = true

			if err := runSegment(ctx, &refOpts, ref, ""); err != nil {
				failed.Add(1)
				log.Printf("batch: %s failed: %v", ref, err)
				return nil
			}
			log.Printf("batch: %s done -> %s", ref, refOpts.outputDir)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d refs failed", n, len(refs))
	}
	log.Printf("batch: %d refs segmented", len(refs))
	return nil
}

// readRefs reads one ref per line; blank lines and #-comments are skipped.
func readRefs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ref file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var refs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		refs = append(refs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ref file: %w", err)
	}
	return refs, nil
}

// sanitizeRef makes a ref safe to use as a directory name.
func sanitizeRef(ref string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', ':', '~', '^':
			return '-'
		}
		return r
	}, ref)
}
