package grouper

import (
	"sort"
	"strings"

	"github.com/dshills/diffscope/internal/config"
	"github.com/dshills/diffscope/pkg/types"
)

// Grouper buckets changes into numbered review groups.
type Grouper struct {
	limits config.Limits
}

// New returns a grouper using the given limits.
func New(limits config.Limits) *Grouper {
	return &Grouper{limits: limits}
}

// Build runs the three grouping stages over aggregated changes: path-sorted
// size packing, small-group coalescing, and function-overlap similarity
// merging. Changes receive their final group/sequence numbers on return.
func (g *Grouper) Build(byFile map[string][]*types.Change) []*types.FileGroup {
	groups, _ := g.BuildCounted(byFile)
	return groups
}

// BuildCounted is Build plus the group count before the similarity stage,
// for run statistics.
func (g *Grouper) BuildCounted(byFile map[string][]*types.Change) ([]*types.FileGroup, int) {
	groups := g.pack(byFile)
	groups = g.coalesce(groups)
	before := len(groups)
	groups = g.mergeSimilar(groups)
	renumber(groups)
	return groups, before
}

// pack assigns changes to size-bounded single-file groups, processing files
// in path-sorted order. A change that would overflow a non-empty group
// flushes it; an oversized change alone in a group is accepted.
func (g *Grouper) pack(byFile map[string][]*types.Change) []*types.FileGroup {
	paths := make([]string, 0, len(byFile))
	for path := range byFile {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var groups []*types.FileGroup
	for _, path := range paths {
		var current *types.FileGroup
		for _, change := range byFile[path] {
			if current != nil && current.TotalLines+change.TotalLines > g.limits.GroupLines {
				groups = append(groups, current)
				current = nil
			}
			if current == nil {
				current = &types.FileGroup{Files: []string{path}}
			}
			current.Changes = append(current.Changes, change)
			current.TotalLines += change.TotalLines
		}
		if current != nil {
			groups = append(groups, current)
		}
	}
	return groups
}

// coalesce greedily folds consecutive small groups together while the
// combined total stays within the cap. Runs only when more than one group
// exists.
func (g *Grouper) coalesce(groups []*types.FileGroup) []*types.FileGroup {
	if len(groups) <= 1 {
		return groups
	}

	var (
		combined []*types.FileGroup
		current  *types.FileGroup
	)
	for _, group := range groups {
		switch {
		case current == nil:
			current = group
		case current.TotalLines+group.TotalLines <= g.limits.CombinedGroupLines:
			current.Absorb(group)
		default:
			combined = append(combined, current)
			current = group
		}
	}
	if current != nil {
		combined = append(combined, current)
	}
	return combined
}

// mergeSimilar repeatedly merges the pair of groups with the highest
// function-overlap ratio until no qualifying pair remains. The scan is
// greedy: the first best pair in scan order wins ties, and the result is
// deliberately not a globally optimal matching.
func (g *Grouper) mergeSimilar(groups []*types.FileGroup) []*types.FileGroup {
	if len(groups) <= 1 {
		return groups
	}

	funcs := make([]map[string]struct{}, len(groups))
	for i, group := range groups {
		funcs[i] = GroupFunctions(group)
	}

	working := make([]*types.FileGroup, len(groups))
	copy(working, groups)

	for {
		bestOverlap := 0.0
		bestI, bestJ := -1, -1

		for i := 0; i < len(working); i++ {
			if working[i] == nil {
				continue
			}
			for j := i + 1; j < len(working); j++ {
				if working[j] == nil {
					continue
				}
				if working[i].TotalLines+working[j].TotalLines > g.limits.SimilarityLines {
					continue
				}
				overlap := overlapRatio(funcs[i], funcs[j])
				if overlap >= g.limits.OverlapRatio && overlap > bestOverlap {
					bestOverlap = overlap
					bestI, bestJ = i, j
				}
			}
		}

		if bestI < 0 {
			break
		}
		working[bestI].Absorb(working[bestJ])
		working[bestJ] = nil
		for name := range funcs[bestJ] {
			funcs[bestI][name] = struct{}{}
		}
		funcs[bestJ] = map[string]struct{}{}
	}

	result := working[:0]
	for _, group := range working {
		if group != nil {
			result = append(result, group)
		}
	}
	return result
}

// GroupFunctions collects every function a group touches: each change's
// comma-split symbol names (the "unknown" placeholder excluded) plus its
// SymbolInfo primary, callers, and calls.
func GroupFunctions(group *types.FileGroup) map[string]struct{} {
	funcs := make(map[string]struct{})
	for _, change := range group.Changes {
		if change.Symbol != "" && change.Symbol != types.UnknownSymbol {
			for _, name := range strings.Split(change.Symbol, ",") {
				if name = strings.TrimSpace(name); name != "" {
					funcs[name] = struct{}{}
				}
			}
		}
		if change.Info == nil {
			continue
		}
		if change.Info.Name != "" {
			funcs[change.Info.Name] = struct{}{}
		}
		for _, caller := range change.Info.Callers {
			funcs[caller] = struct{}{}
		}
		for _, callee := range change.Info.Calls {
			funcs[callee] = struct{}{}
		}
	}
	return funcs
}

// SortedGroupFunctions returns a group's touched functions sorted, for
// stable output documents.
func SortedGroupFunctions(group *types.FileGroup) []string {
	set := GroupFunctions(group)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// overlapRatio is |intersection| divided by the size of the smaller set.
// The smaller-set denominator lets a small group merge into a larger one
// whose symbols cover it.
func overlapRatio(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	intersection := 0
	for name := range small {
		if _, ok := large[name]; ok {
			intersection++
		}
	}
	return float64(intersection) / float64(len(small))
}

// renumber assigns contiguous 1-based group numbers and per-group change
// sequence numbers.
func renumber(groups []*types.FileGroup) {
	for i, group := range groups {
		group.Num = i + 1
		for j, change := range group.Changes {
			change.Group = group.Num
			change.Seq = j + 1
		}
	}
}
