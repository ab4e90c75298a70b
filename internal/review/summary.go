package review

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dshills/diffscope/internal/config"
	"github.com/dshills/diffscope/internal/engine"
)

// Summary prints the human-readable run report: commit line, analyzer
// provenance, counters, the caps in effect, and the per-group breakdown.
func Summary(w io.Writer, run *engine.Run, limits config.Limits, outputDir string) {
	fmt.Fprintln(w, "CONTEXT ANALYSIS COMPLETE")
	fmt.Fprintln(w)

	if run.Commit != nil && run.Commit.SHA != "" {
		fmt.Fprintf(w, "Commit: %s %s\n", run.Commit.ShortSHA(), run.Commit.Subject)
		fmt.Fprintf(w, "Author: %s\n", run.Commit.Author)
		fmt.Fprintln(w)
	}

	if run.Stats.AnalyzerUsed {
		fmt.Fprintln(w, "Using external analyzer for symbol information")
	} else {
		fmt.Fprintln(w, "Analyzer unavailable, extracting definitions from source")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Source files modified: %d\n", run.Stats.Files)
	fmt.Fprintf(w, "Hunks in diff: %d\n", run.Stats.Hunks)
	fmt.Fprintf(w, "Groups created: %d\n", run.Stats.Groups)
	if merges := run.Stats.GroupsBeforeSimilarity - run.Stats.Groups; merges > 0 {
		fmt.Fprintf(w, "  - Groups merged by function similarity: %d (from %d to %d)\n",
			merges, run.Stats.GroupsBeforeSimilarity, run.Stats.Groups)
	}
	fmt.Fprintf(w, "Total changes: %d\n", totalChanges(run))
	fmt.Fprintf(w, "  - Max lines per group: %d\n", limits.GroupLines)
	fmt.Fprintf(w, "  - Small groups combined: max %d lines\n", limits.CombinedGroupLines)
	fmt.Fprintf(w, "  - Similarity merge: >%d%% function overlap, max %d lines\n",
		int(limits.OverlapRatio*100), limits.SimilarityLines)
	fmt.Fprintf(w, "  - Modifications: combined by function, max %d added lines\n",
		limits.CombinedAddedLines)
	fmt.Fprintf(w, "  - New functions: combined by file, max %d total lines\n",
		limits.NewFunctionLines)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "File breakdown:")
	for _, group := range run.Groups {
		names := make([]string, len(group.Files))
		for i, f := range group.Files {
			names[i] = filepath.Base(f)
		}
		fmt.Fprintf(w, "- %s: %s (%d lines, %d changes)\n",
			group.ID(), strings.Join(names, ", "), group.TotalLines, len(group.Changes))
		for _, change := range group.Changes {
			fmt.Fprintf(w, "    - %s: %s in %s\n",
				change.ID(), change.Symbol, filepath.Base(change.File))
		}
	}

	if outputDir != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Output directory: %s\n", outputDir)
	}
}

func totalChanges(run *engine.Run) int {
	total := 0
	for _, group := range run.Groups {
		total += len(group.Changes)
	}
	return total
}
