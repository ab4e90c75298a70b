package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/diffscope/internal/engine"
	"github.com/dshills/diffscope/pkg/types"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRecords() (*Run, []*Group) {
	run := &Run{
		RepoDir:       "/src/linux",
		CommitSHA:     "abc123",
		CommitSubject: "net: fix rx",
		CommitAuthor:  "Jane <j@x>",
		Files:         2,
		Hunks:         3,
		Changes:       2,
		Groups:        1,
		AnalyzerUsed:  true,
	}
	groups := []*Group{{
		Num:        1,
		Files:      []string{"net/core/dev.c", "net/core/skbuff.c"},
		TotalLines: 12,
		Changes: []*Change{
			{
				ChangeID:   "FILE-1-CHANGE-1",
				File:       "net/core/dev.c",
				Symbol:     "netif_rx",
				Header:     "-100,6 +100,8",
				Diff:       "@@ -100,6 +100,8 @@ int netif_rx\n+\tret = 0;",
				TotalLines: 2,
				Modifies:   "netif_rx",
				Calls:      []string{"enqueue_to_backlog"},
			},
			{
				ChangeID:   "FILE-1-CHANGE-2",
				File:       "net/core/skbuff.c",
				Symbol:     "skb_release",
				Header:     "-50,4 +50,5",
				Diff:       "@@ -50,4 +50,5 @@ void skb_release\n+\tkfree(skb);",
				TotalLines: 2,
				Definition: "void skb_release(struct sk_buff *skb)\n{\n}\n",
			},
		},
	}}
	return run, groups
}

func TestSaveRun_AssignsIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run, groups := sampleRecords()
	require.NoError(t, store.SaveRun(ctx, run, groups))

	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())
	assert.NotZero(t, groups[0].ID)
	assert.Equal(t, run.ID, groups[0].RunID)
	assert.Equal(t, groups[0].ID, groups[0].Changes[0].GroupID)
}

func TestGetRun_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run, groups := sampleRecords()
	require.NoError(t, store.SaveRun(ctx, run, groups))

	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.CommitSHA)
	assert.Equal(t, "net: fix rx", got.CommitSubject)
	assert.Equal(t, 2, got.Files)
	assert.Equal(t, 1, got.Groups)
	assert.True(t, got.AnalyzerUsed)
}

func TestGetRun_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetRun(context.Background(), "no-such-run")
	assert.ErrorIs(t, err, types.ErrRunNotFound)
}

func TestListRuns_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		run, groups := sampleRecords()
		require.NoError(t, store.SaveRun(ctx, run, groups))
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	all, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListGroups_AndChanges(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run, groups := sampleRecords()
	require.NoError(t, store.SaveRun(ctx, run, groups))

	listed, err := store.ListGroups(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, 1, listed[0].Num)
	assert.Equal(t, []string{"net/core/dev.c", "net/core/skbuff.c"}, listed[0].Files)
	assert.Equal(t, 12, listed[0].TotalLines)

	changes, err := store.ListChanges(ctx, listed[0].ID)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "FILE-1-CHANGE-1", changes[0].ChangeID)
	assert.Equal(t, []string{"enqueue_to_backlog"}, changes[0].Calls)
	assert.Equal(t, "FILE-1-CHANGE-2", changes[1].ChangeID)
	assert.Contains(t, changes[1].Definition, "skb_release")
}

func TestListGroups_UnknownRun(t *testing.T) {
	store := newTestStore(t)
	_, err := store.ListGroups(context.Background(), "no-such-run")
	assert.ErrorIs(t, err, types.ErrRunNotFound)
}

func TestGetChange_ByReviewID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run, groups := sampleRecords()
	require.NoError(t, store.SaveRun(ctx, run, groups))

	change, err := store.GetChange(ctx, run.ID, "FILE-1-CHANGE-2")
	require.NoError(t, err)
	assert.Equal(t, "skb_release", change.Symbol)

	_, err = store.GetChange(ctx, run.ID, "FILE-9-CHANGE-9")
	assert.ErrorIs(t, err, types.ErrChangeNotFound)
}

func TestSearchChanges_FullText(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run, groups := sampleRecords()
	require.NoError(t, store.SaveRun(ctx, run, groups))

	hits, err := store.SearchChanges(ctx, run.ID, "kfree", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "FILE-1-CHANGE-2", hits[0].ChangeID)

	// Other runs do not leak into the results.
	other, otherGroups := sampleRecords()
	require.NoError(t, store.SaveRun(ctx, other, otherGroups))
	hits, err = store.SearchChanges(ctx, run.ID, "kfree", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestNewRunRecord_FromEngineRun(t *testing.T) {
	engRun := &engine.Run{
		Groups: []*types.FileGroup{{
			Num:        1,
			Files:      []string{"mm/slub.c"},
			TotalLines: 3,
			Changes: []*types.Change{{
				Group: 1, Seq: 1,
				File:       "mm/slub.c",
				Symbol:     "kmalloc",
				Content:    "+x",
				TotalLines: 3,
				Info:       &types.SymbolInfo{Name: "kmalloc", Callers: []string{"kzalloc"}},
			}},
		}},
		Commit: &types.Commit{SHA: "deadbeef", Subject: "mm: slub fix", Author: "A <a@b>"},
		Stats:  engine.Stats{Files: 1, Hunks: 1, Changes: 1, Groups: 1, AnalyzerUsed: true},
	}

	run, groups := NewRunRecord(engRun, "/src/linux")
	assert.Equal(t, "deadbeef", run.CommitSHA)
	assert.Equal(t, "/src/linux", run.RepoDir)
	assert.True(t, run.AnalyzerUsed)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Changes, 1)
	assert.Equal(t, "FILE-1-CHANGE-1", groups[0].Changes[0].ChangeID)
	assert.Equal(t, "kmalloc", groups[0].Changes[0].Modifies)
	assert.Equal(t, []string{"kzalloc"}, groups[0].Changes[0].Callers)
}
