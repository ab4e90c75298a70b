package aggregator

import (
	"strings"

	"github.com/dshills/diffscope/internal/config"
	"github.com/dshills/diffscope/internal/diffparse"
	"github.com/dshills/diffscope/pkg/types"
)

// Aggregator folds segments into review changes under the configured size
// caps.
type Aggregator struct {
	limits config.Limits
}

// New returns an aggregator using the given limits.
func New(limits config.Limits) *Aggregator {
	return &Aggregator{limits: limits}
}

// Result holds the aggregated changes keyed by file path, plus the paths in
// first-seen order so callers can iterate deterministically.
type Result struct {
	Files  []string
	ByFile map[string][]*types.Change
	Total  int
}

// fileSegments is the per-file accumulator: modification segments bucketed
// by symbol (insertion order preserved), new-definition segments in arrival
// order.
type fileSegments struct {
	symbolOrder []string
	mods        map[string][]*types.Segment
	newDefs     []*types.Segment
}

// Combine merges per-file segments into changes. Modification segments of
// the same (file, symbol) merge while the running added-line total stays
// within the cap; new-definition segments merge per file while the running
// total-line count stays within its cap. Within each file, modification
// changes precede new-definition changes.
func (a *Aggregator) Combine(files []*types.FileChange, segmentsByHunk func(*types.Hunk) []*types.Segment) *Result {
	res := &Result{ByFile: make(map[string][]*types.Change)}
	perFile := make(map[string]*fileSegments)

	for _, fc := range files {
		for _, hunk := range fc.Hunks {
			for _, seg := range segmentsByHunk(hunk) {
				fs, ok := perFile[fc.Path]
				if !ok {
					fs = &fileSegments{mods: make(map[string][]*types.Segment)}
					perFile[fc.Path] = fs
					res.Files = append(res.Files, fc.Path)
				}
				if seg.NewDefinition {
					fs.newDefs = append(fs.newDefs, seg)
					continue
				}
				if _, seen := fs.mods[seg.Symbol]; !seen {
					fs.symbolOrder = append(fs.symbolOrder, seg.Symbol)
				}
				fs.mods[seg.Symbol] = append(fs.mods[seg.Symbol], seg)
			}
		}
	}

	for _, path := range res.Files {
		fs := perFile[path]
		var changes []*types.Change
		for _, symbol := range fs.symbolOrder {
			changes = append(changes, a.combineModifications(path, symbol, fs.mods[symbol])...)
		}
		changes = append(changes, a.combineNewDefinitions(path, fs.newDefs)...)
		res.ByFile[path] = changes
		res.Total += len(changes)
	}

	return res
}

// combineModifications merges consecutive segments of one (file, symbol)
// key while the running added-line count stays within the cap. A single
// oversized segment still becomes its own change.
func (a *Aggregator) combineModifications(path, symbol string, segs []*types.Segment) []*types.Change {
	var (
		changes []*types.Change
		batch   batch
	)

	for _, seg := range segs {
		added := diffparse.CountAddedLines(seg.Content)
		if batch.count > 0 && batch.count+added > a.limits.CombinedAddedLines {
			changes = append(changes, batch.flushModification(path, symbol))
		}
		batch.add(seg, added)
	}
	if len(batch.contents) > 0 {
		changes = append(changes, batch.flushModification(path, symbol))
	}
	return changes
}

// combineNewDefinitions merges a file's new-function segments (any symbol)
// while the running total-line count stays within the cap. Symbol names of
// merged segments are comma-joined.
func (a *Aggregator) combineNewDefinitions(path string, segs []*types.Segment) []*types.Change {
	var (
		changes []*types.Change
		batch   batch
	)

	for _, seg := range segs {
		total := diffparse.CountTotalLines(seg.Content)
		if batch.count > 0 && batch.count+total > a.limits.NewFunctionLines {
			changes = append(changes, batch.flushNewDefinition(path))
		}
		batch.add(seg, total)
	}
	if len(batch.contents) > 0 {
		changes = append(changes, batch.flushNewDefinition(path))
	}
	return changes
}

// batch accumulates segments until a cap would be exceeded. count tracks
// added lines for modifications and total lines for new definitions.
type batch struct {
	symbols  []string
	headers  []string
	contents []string
	infos    []*types.SymbolInfo
	count    int
}

func (b *batch) add(seg *types.Segment, lines int) {
	b.symbols = append(b.symbols, seg.Symbol)
	b.headers = append(b.headers, headerPart(seg.Header))
	b.contents = append(b.contents, seg.Content)
	b.infos = append(b.infos, seg.Info)
	b.count += lines
}

func (b *batch) flushModification(path, symbol string) *types.Change {
	content := strings.Join(b.contents, "\n\n")
	change := &types.Change{
		File:       path,
		Symbol:     symbol,
		Header:     strings.Join(b.headers, " + "),
		Content:    content,
		TotalLines: diffparse.CountTotalLines(content),
		Info:       mergeInfos(b.infos),
	}
	*b = batch{}
	return change
}

func (b *batch) flushNewDefinition(path string) *types.Change {
	change := &types.Change{
		File:          path,
		Symbol:        strings.Join(b.symbols, ", "),
		Header:        strings.Join(b.headers, " + "),
		Content:       strings.Join(b.contents, "\n\n"),
		TotalLines:    b.count,
		NewDefinition: true,
		Info:          mergeInfos(b.infos),
	}
	*b = batch{}
	return change
}

// headerPart extracts the text between a header's @@ markers; headers
// without markers pass through unchanged.
func headerPart(header string) string {
	if !strings.Contains(header, "@@") {
		return header
	}
	parts := strings.Split(header, "@@")
	if len(parts) < 2 {
		return header
	}
	return strings.TrimSpace(parts[1])
}

func mergeInfos(infos []*types.SymbolInfo) *types.SymbolInfo {
	var merged *types.SymbolInfo
	for _, info := range infos {
		if info == nil {
			continue
		}
		merged = types.MergeSymbolInfo(merged, info)
	}
	return merged
}
