package segmenter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/diffscope/pkg/types"
)

func modHunk() *types.Hunk {
	return &types.Hunk{
		Header:   "@@ -10,7 +10,9 @@ static int tcp_parse_options(struct sk_buff *skb)",
		NewStart: 10,
		Section:  "static int tcp_parse_options(struct sk_buff *skb)",
		Lines: []string{
			" 	int opt;",
			"-	opt = 0;",
			"+	opt = skb->len;",
			"+	pr_debug(\"opt=%d\\n\", opt);",
			" 	return opt;",
		},
	}
}

func TestSplit_PureModification(t *testing.T) {
	hunk := modHunk()
	segments := Split(hunk, nil)

	require.Len(t, segments, 1)
	seg := segments[0]
	assert.Equal(t, "tcp_parse_options", seg.Symbol)
	assert.False(t, seg.NewDefinition)
	assert.Equal(t, hunk.Header, seg.Header)
	assert.Equal(t, hunk.Header+"\n"+strings.Join(hunk.Lines, "\n"), seg.Content)
}

func TestSplit_SingleNewFunction(t *testing.T) {
	hunk := &types.Hunk{
		Header:  "@@ -100,3 +100,10 @@",
		Section: "",
		Lines: []string{
			" }",
			"+",
			"+static int bar_init(struct bar *b)",
			"+{",
			"+	b->state = BAR_READY;",
			"+	return 0;",
			"+}",
		},
	}

	segments := Split(hunk, nil)
	require.Len(t, segments, 1)
	assert.Equal(t, "bar_init", segments[0].Symbol)
	assert.True(t, segments[0].NewDefinition)
	assert.Contains(t, segments[0].Content, "+static int bar_init(struct bar *b)")
}

func TestSplit_TwoNewFunctions(t *testing.T) {
	hunk := &types.Hunk{
		Header:  "@@ -50,2 +50,14 @@ static void unrelated(void)",
		Section: "static void unrelated(void)",
		Lines: []string{
			"+static int first_helper(int a)",
			"+{",
			"+	return a + 1;",
			"+}",
			"+",
			"+static int second_helper(int b)",
			"+{",
			"+	return b - 1;",
			"+}",
		},
	}

	segments := Split(hunk, nil)
	require.Len(t, segments, 2)

	first, second := segments[0], segments[1]
	assert.Equal(t, "first_helper", first.Symbol)
	assert.Equal(t, "second_helper", second.Symbol)
	assert.True(t, first.NewDefinition)
	assert.True(t, second.NewDefinition)

	// Regenerated headers carry the original range text.
	assert.Equal(t, "@@ (within -50,2 +50,14) @@ first_helper", first.Header)
	assert.Equal(t, "@@ (within -50,2 +50,14) @@ second_helper", second.Header)

	// No line of one function's body leaks into the other's content.
	assert.NotContains(t, first.Content, "second_helper")
	assert.NotContains(t, second.Content, "first_helper")
	assert.NotContains(t, first.Content, "b - 1")
	assert.NotContains(t, second.Content, "a + 1")
}

func TestSplit_HunkEnteringNextFunction(t *testing.T) {
	// The hunk opens with the tail of old_func (including a change) and the
	// remaining changes belong to next_func, whose definition appears in
	// the hunk body.
	hunk := &types.Hunk{
		Header:   "@@ -20,10 +20,12 @@ static void old_func(void)",
		NewStart: 20,
		Section:  "static void old_func(void)",
		Lines: []string{
			" 	cleanup();",
			"+	extra_cleanup();",
			" }",
			" ",
			" static int next_func(struct ctx *c)",
			" {",
			"-	return c->old;",
			"+	return c->renamed;",
			" }",
		},
	}

	segments := Split(hunk, nil)
	require.Len(t, segments, 2)

	assert.Equal(t, "old_func", segments[0].Symbol)
	assert.Equal(t, "next_func", segments[1].Symbol)
	assert.False(t, segments[0].NewDefinition)
	assert.False(t, segments[1].NewDefinition)
	assert.Contains(t, segments[0].Content, "extra_cleanup")
	assert.NotContains(t, segments[0].Content, "renamed")
	assert.Contains(t, segments[1].Content, "next_func")
	assert.Contains(t, segments[1].Content, "renamed")
}

func TestSplit_BodyFunctionOnly(t *testing.T) {
	// Changes only after the internal definition: one segment, named after
	// the body function rather than the stale header hint.
	hunk := &types.Hunk{
		Header:  "@@ -20,8 +20,9 @@ static void old_func(void)",
		Section: "static void old_func(void)",
		Lines: []string{
			" }",
			" ",
			" static int next_func(struct ctx *c)",
			" {",
			"+	c->hits++;",
			" 	return c->val;",
			" }",
		},
	}

	segments := Split(hunk, nil)
	require.Len(t, segments, 1)
	assert.Equal(t, "next_func", segments[0].Symbol)
	assert.False(t, segments[0].NewDefinition)
}

func TestSplit_PrototypeIsNotANewFunction(t *testing.T) {
	hunk := &types.Hunk{
		Header:  "@@ -5,2 +5,3 @@",
		Section: "",
		Lines: []string{
			" struct bar;",
			"+int bar_probe(struct bar *b);",
			" ",
		},
	}

	segments := Split(hunk, nil)
	require.Len(t, segments, 1)
	assert.False(t, segments[0].NewDefinition)
}

func TestSplit_TwoLineSignature(t *testing.T) {
	hunk := &types.Hunk{
		Header:  "@@ -10,2 +10,8 @@",
		Section: "",
		Lines: []string{
			"+static int",
			"+slow_path_alloc(struct pool *p)",
			"+{",
			"+	return pool_grab(p);",
			"+}",
		},
	}

	segments := Split(hunk, nil)
	require.Len(t, segments, 1)
	assert.Equal(t, "slow_path_alloc", segments[0].Symbol)
	assert.True(t, segments[0].NewDefinition)
}

func TestSplit_InfoLookup(t *testing.T) {
	table := types.NewSymbolTable()
	table.Add(&types.SymbolInfo{
		Name:  "tcp_parse_options",
		Calls: []string{"pr_debug"},
	})

	segments := Split(modHunk(), table)
	require.Len(t, segments, 1)
	require.NotNil(t, segments[0].Info)
	assert.Equal(t, "tcp_parse_options", segments[0].Info.Name)
	assert.Equal(t, []string{"pr_debug"}, segments[0].Info.Calls)
}

func TestSplit_InfoFallsBackToHunk(t *testing.T) {
	hunk := modHunk()
	hunk.Info = &types.SymbolInfo{Name: "tcp_parse_options"}

	segments := Split(hunk, types.NewSymbolTable())
	require.Len(t, segments, 1)
	require.NotNil(t, segments[0].Info)
	assert.Equal(t, "tcp_parse_options", segments[0].Info.Name)
}
