package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/diffscope/pkg/types"
)

const sampleDiff = `diff --git a/net/core/dev.c b/net/core/dev.c
index 1234567..89abcde 100644
--- a/net/core/dev.c
+++ b/net/core/dev.c
@@ -100,6 +100,8 @@ static int netif_rx_internal(struct sk_buff *skb)
 	struct softnet_data *sd;
 	int ret;
+	trace_netif_rx_entry(skb);
+	ret = enqueue_to_backlog(skb, cpu);
 	return ret;
diff --git a/net/core/skbuff.c b/net/core/skbuff.c
index 2345678..9abcdef 100644
--- a/net/core/skbuff.c
+++ b/net/core/skbuff.c
@@ -50,4 +50,5 @@ void skb_release(struct sk_buff *skb)
 {
 	kfree(skb->head);
+	kfree(skb->frag_list);
 }
`

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(Config{RepoDir: t.TempDir()})
}

func TestSegment_BuildsGroups(t *testing.T) {
	eng := newTestEngine(t)

	run, err := eng.Segment(context.Background(), sampleDiff)
	require.NoError(t, err)

	assert.Equal(t, 2, run.Stats.Files)
	assert.Equal(t, 2, run.Stats.Hunks)
	assert.Equal(t, 2, run.Stats.Segments)
	assert.Equal(t, 2, run.Stats.Changes)
	assert.False(t, run.Stats.AnalyzerUsed)
	assert.Equal(t, sampleDiff, run.Diff)

	// Two small single-file groups coalesce into one.
	require.Len(t, run.Groups, 1)
	group := run.Groups[0]
	assert.Equal(t, 1, group.Num)
	assert.Equal(t, []string{"net/core/dev.c", "net/core/skbuff.c"}, group.Files)
	require.Len(t, group.Changes, 2)
	assert.Equal(t, "FILE-1-CHANGE-1", group.Changes[0].ID())
	assert.Equal(t, "FILE-1-CHANGE-2", group.Changes[1].ID())
	assert.Equal(t, "netif_rx_internal", group.Changes[0].Symbol)
	assert.Equal(t, "skb_release", group.Changes[1].Symbol)
}

func TestSegment_Deterministic(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	first, err := eng.Segment(ctx, sampleDiff)
	require.NoError(t, err)
	second, err := eng.Segment(ctx, sampleDiff)
	require.NoError(t, err)

	require.Equal(t, len(first.Groups), len(second.Groups))
	for i := range first.Groups {
		assert.Equal(t, first.Groups[i].Files, second.Groups[i].Files)
		assert.Equal(t, first.Groups[i].TotalLines, second.Groups[i].TotalLines)
		for j := range first.Groups[i].Changes {
			assert.Equal(t, first.Groups[i].Changes[j].ID(), second.Groups[i].Changes[j].ID())
			assert.Equal(t, first.Groups[i].Changes[j].Content, second.Groups[i].Changes[j].Content)
		}
	}
}

func TestSegment_EmptyDiff(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.Segment(context.Background(), "")
	assert.ErrorIs(t, err, types.ErrInvalidDiff)
}

func TestSegment_CanceledContext(t *testing.T) {
	eng := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Segment(ctx, sampleDiff)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSegment_AttachesDefinitions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "net/core"), 0o755))

	var b strings.Builder
	for i := 0; i < 97; i++ {
		b.WriteString("/* filler */\n")
	}
	b.WriteString("static int netif_rx_internal(struct sk_buff *skb)\n")
	b.WriteString("{\n")
	b.WriteString("\tint ret;\n")
	b.WriteString("\ttrace_netif_rx_entry(skb);\n")
	b.WriteString("\treturn ret;\n")
	b.WriteString("}\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "net/core/dev.c"), []byte(b.String()), 0o644))

	eng := New(Config{RepoDir: dir})
	run, err := eng.Segment(context.Background(), sampleDiff)
	require.NoError(t, err)

	var devChange *types.Change
	for _, group := range run.Groups {
		for _, change := range group.Changes {
			if change.File == "net/core/dev.c" {
				devChange = change
			}
		}
	}
	require.NotNil(t, devChange)
	assert.Contains(t, devChange.Definition, "static int netif_rx_internal")
	assert.Contains(t, devChange.Definition, "return ret;")

	// The file missing from the working tree attaches nothing.
	for _, group := range run.Groups {
		for _, change := range group.Changes {
			if change.File == "net/core/skbuff.c" {
				assert.Empty(t, change.Definition)
			}
		}
	}
}

func TestSegmentShow_ParsesCommitFromShowOutput(t *testing.T) {
	show := "commit 3f1c9a7be2d44c019a1b5b86ec30cda231fa8e01\n" +
		"Author: Jane Hacker <jane@example.org>\n" +
		"\n" +
		"    net: fix rx accounting\n" +
		"\n" +
		sampleDiff

	eng := newTestEngine(t)
	run, err := eng.SegmentShow(context.Background(), show)
	require.NoError(t, err)

	// One pass over the show text yields both metadata and groups.
	require.NotNil(t, run.Commit)
	assert.Equal(t, "3f1c9a7be2d44c019a1b5b86ec30cda231fa8e01", run.Commit.SHA)
	assert.Equal(t, "net: fix rx accounting", run.Commit.Subject)
	assert.Equal(t, sampleDiff, run.Diff)
	require.Len(t, run.Groups, 1)
	assert.Len(t, run.Groups[0].Changes, 2)
}

func TestSegmentShow_NoDiff(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.SegmentShow(context.Background(), "commit abc\n\n    message only\n")
	assert.ErrorIs(t, err, types.ErrInvalidDiff)
}

func TestNew_DefaultLimits(t *testing.T) {
	eng := New(Config{})
	assert.Equal(t, 250, eng.cfg.Limits.GroupLines)
	assert.Equal(t, 0.8, eng.cfg.Limits.OverlapRatio)
}
