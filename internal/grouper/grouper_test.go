package grouper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/diffscope/internal/config"
	"github.com/dshills/diffscope/pkg/types"
)

func change(symbol string, lines int, info *types.SymbolInfo) *types.Change {
	return &types.Change{
		Symbol:     symbol,
		Content:    "+x",
		TotalLines: lines,
		Info:       info,
	}
}

func smallLimits() config.Limits {
	return config.Limits{
		CombinedAddedLines: 250,
		NewFunctionLines:   250,
		GroupLines:         10,
		CombinedGroupLines: 10,
		SimilarityLines:    50,
		OverlapRatio:       0.8,
	}
}

func TestBuild_PacksByPathOrder(t *testing.T) {
	byFile := map[string][]*types.Change{
		"b.c": {change("fb", 4, nil)},
		"a.c": {change("fa", 4, nil)},
	}

	groups := New(smallLimits()).Build(byFile)
	require.Len(t, groups, 1) // coalesced: 4+4 <= 10

	assert.Equal(t, 1, groups[0].Num)
	assert.Equal(t, []string{"a.c", "b.c"}, groups[0].Files)
	assert.Equal(t, "fa", groups[0].Changes[0].Symbol)
	assert.Equal(t, "fb", groups[0].Changes[1].Symbol)
}

func TestBuild_GroupCapSplitsFile(t *testing.T) {
	limits := smallLimits()
	limits.CombinedGroupLines = 1 // disable coalescing merges
	byFile := map[string][]*types.Change{
		"a.c": {change("f1", 6, nil), change("f2", 6, nil)},
	}

	groups := New(limits).Build(byFile)
	require.Len(t, groups, 2)
	assert.Equal(t, 6, groups[0].TotalLines)
	assert.Equal(t, 6, groups[1].TotalLines)
	assert.Equal(t, 1, groups[0].Num)
	assert.Equal(t, 2, groups[1].Num)
}

func TestBuild_OversizedChangeAccepted(t *testing.T) {
	byFile := map[string][]*types.Change{
		"a.c": {change("huge", 400, nil)},
	}

	groups := New(smallLimits()).Build(byFile)
	require.Len(t, groups, 1)
	assert.Equal(t, 400, groups[0].TotalLines)
}

func TestBuild_CoalesceStopsAtCap(t *testing.T) {
	limits := smallLimits()
	limits.GroupLines = 6
	limits.CombinedGroupLines = 9
	limits.SimilarityLines = 1 // disable similarity merges
	byFile := map[string][]*types.Change{
		"a.c": {change("f1", 4, nil)},
		"b.c": {change("f2", 4, nil)},
		"c.c": {change("f3", 4, nil)},
	}

	groups := New(limits).Build(byFile)
	// a+b coalesce (8 <= 9), c overflows and stays alone.
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"a.c", "b.c"}, groups[0].Files)
	assert.Equal(t, []string{"c.c"}, groups[1].Files)
}

func TestBuild_RenumberingIsContiguous(t *testing.T) {
	limits := smallLimits()
	limits.CombinedGroupLines = 1
	byFile := map[string][]*types.Change{
		"a.c": {change("f1", 8, nil), change("f2", 8, nil)},
		"b.c": {change("f3", 8, nil)},
	}

	groups := New(limits).Build(byFile)
	require.Len(t, groups, 3)
	for i, group := range groups {
		assert.Equal(t, i+1, group.Num)
		for j, c := range group.Changes {
			assert.Equal(t, group.Num, c.Group)
			assert.Equal(t, j+1, c.Seq)
		}
	}
	assert.Equal(t, "FILE-1-CHANGE-1", groups[0].Changes[0].ID())
}

func TestMergeSimilar_IdenticalSetsMerge(t *testing.T) {
	limits := smallLimits()
	limits.CombinedGroupLines = 1 // keep stage B from pre-merging

	info := &types.SymbolInfo{Name: "shared_fn", Calls: []string{"helper"}}
	byFile := map[string][]*types.Change{
		"a.c": {change("shared_fn", 8, info)},
		"b.c": {change("shared_fn", 8, info.Clone())},
	}

	groups := New(limits).Build(byFile)
	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []string{"a.c", "b.c"}, groups[0].Files)
	assert.Equal(t, 16, groups[0].TotalLines)
}

func TestMergeSimilar_DisjointSetsNeverMerge(t *testing.T) {
	limits := smallLimits()
	limits.CombinedGroupLines = 1
	byFile := map[string][]*types.Change{
		"a.c": {change("alpha", 2, nil)},
		"b.c": {change("beta", 2, nil)},
	}

	groups := New(limits).Build(byFile)
	assert.Len(t, groups, 2)
}

func TestMergeSimilar_SubsetOfLargerGroupMerges(t *testing.T) {
	// The overlap denominator is the smaller set: a one-symbol group whose
	// symbol appears in a many-symbol group reaches ratio 1.0.
	limits := smallLimits()
	limits.CombinedGroupLines = 1

	big := &types.SymbolInfo{
		Name:  "core_fn",
		Calls: []string{"helper_a", "helper_b", "helper_c", "tiny_fn"},
	}
	byFile := map[string][]*types.Change{
		"core.c": {change("core_fn", 20, big)},
		"tiny.c": {change("tiny_fn", 2, nil)},
	}

	groups := New(limits).Build(byFile)
	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []string{"core.c", "tiny.c"}, groups[0].Files)
}

func TestMergeSimilar_SizeCapBlocksMerge(t *testing.T) {
	limits := smallLimits()
	limits.CombinedGroupLines = 1
	limits.SimilarityLines = 10
	limits.GroupLines = 250

	info := &types.SymbolInfo{Name: "shared_fn"}
	byFile := map[string][]*types.Change{
		"a.c": {change("shared_fn", 8, info)},
		"b.c": {change("shared_fn", 8, info.Clone())},
	}

	groups := New(limits).Build(byFile)
	assert.Len(t, groups, 2)
}

func TestGroupFunctions_CommaSplitAndInfo(t *testing.T) {
	group := &types.FileGroup{
		Changes: []*types.Change{
			{
				Symbol: "first_fn, second_fn",
				Info: &types.SymbolInfo{
					Name:    "first_fn",
					Callers: []string{"caller_fn"},
					Calls:   []string{"callee_fn"},
					Types:   []string{"struct ctx"},
				},
			},
			{Symbol: types.UnknownSymbol},
		},
	}

	funcs := GroupFunctions(group)
	assert.Contains(t, funcs, "first_fn")
	assert.Contains(t, funcs, "second_fn")
	assert.Contains(t, funcs, "caller_fn")
	assert.Contains(t, funcs, "callee_fn")
	// Types are not functions; unknown never joins the set.
	assert.NotContains(t, funcs, "struct ctx")
	assert.NotContains(t, funcs, types.UnknownSymbol)

	sorted := SortedGroupFunctions(group)
	assert.Equal(t, []string{"callee_fn", "caller_fn", "first_fn", "second_fn"}, sorted)
}
