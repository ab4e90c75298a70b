package diffparse

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/diffscope/pkg/types"
)

const twoFileDiff = `diff --git a/net/core/dev.c b/net/core/dev.c
index 1234567..89abcde 100644
--- a/net/core/dev.c
+++ b/net/core/dev.c
@@ -100,6 +100,8 @@ static int netif_rx_internal(struct sk_buff *skb)
 	int ret;
+	trace_netif_rx_entry(skb);
+	ret = enqueue_to_backlog(skb, cpu);
 	return ret;
@@ -200 +202,2 @@ struct net_device_stats {
 	unsigned long rx_packets;
+	unsigned long rx_requeues;
diff --git a/fs/namei.c b/fs/namei.c
index 2345678..9abcdef 100644
--- a/fs/namei.c
+++ b/fs/namei.c
@@ -50,4 +50,3 @@ static int do_lookup(struct path *p)
 	int err;
-	audit_lookup(p);
 	return err;
`

func TestParse_FilesAndHunks(t *testing.T) {
	files := Parse(twoFileDiff, nil)
	require.Len(t, files, 2)

	dev := files[0]
	assert.Equal(t, "net/core/dev.c", dev.Path)
	assert.Equal(t, "net/core/dev.c", dev.OldPath)
	require.Len(t, dev.Hunks, 2)

	first := dev.Hunks[0]
	assert.Equal(t, 100, first.OldStart)
	assert.Equal(t, 6, first.OldCount)
	assert.Equal(t, 100, first.NewStart)
	assert.Equal(t, 8, first.NewCount)
	assert.Equal(t, "static int netif_rx_internal(struct sk_buff *skb)", first.Section)
	assert.Len(t, first.Lines, 4)

	// Omitted counts default to 1.
	second := dev.Hunks[1]
	assert.Equal(t, 1, second.OldCount)
	assert.Equal(t, 2, second.NewCount)

	namei := files[1]
	assert.Equal(t, "fs/namei.c", namei.Path)
	require.Len(t, namei.Hunks, 1)
	assert.Equal(t, "-\taudit_lookup(p);", namei.Hunks[0].Lines[1])
}

func TestParse_AnnotatesHunksFromTable(t *testing.T) {
	table := types.NewSymbolTable()
	table.Add(&types.SymbolInfo{
		Name:  "netif_rx_internal",
		Calls: []string{"enqueue_to_backlog"},
	})

	files := Parse(twoFileDiff, table)
	require.Len(t, files, 2)

	info := files[0].Hunks[0].Info
	require.NotNil(t, info)
	assert.Equal(t, "netif_rx_internal", info.Name)

	// Annotation is a copy; mutating it leaves the table intact.
	info.Calls = append(info.Calls, "mutated")
	assert.Equal(t, []string{"enqueue_to_backlog"}, table.Lookup("netif_rx_internal").Calls)

	assert.Nil(t, files[1].Hunks[0].Info)
}

func TestParse_SkipsMalformedLines(t *testing.T) {
	diff := "garbage line\n" +
		"diff --git a/a.c b/a.c\n" +
		"new file mode 100644\n" +
		"Binary files differ\n" +
		"@@ not a real header\n" +
		"@@ -1,2 +1,2 @@\n" +
		" ctx\n" +
		"+added\n"

	files := Parse(diff, nil)
	require.Len(t, files, 1)
	require.Len(t, files[0].Hunks, 1)
	assert.Equal(t, []string{" ctx", "+added"}, files[0].Hunks[0].Lines)
}

func TestParse_FileWithoutHunks(t *testing.T) {
	diff := "diff --git a/empty.c b/empty.c\nindex 111..222 100644\n"
	files := Parse(diff, nil)
	require.Len(t, files, 1)
	assert.Empty(t, files[0].Hunks)
}

func TestParse_RoundTripsGeneratedDiff(t *testing.T) {
	before := "int a(void)\n{\n\treturn 1;\n}\n\nint b(void)\n{\n\treturn 2;\n}\n"
	after := "int a(void)\n{\n\treturn 1;\n}\n\nint b(void)\n{\n\tlog_call();\n\treturn 2;\n}\n"

	unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/lib/demo.c",
		ToFile:   "b/lib/demo.c",
		Context:  3,
	})
	require.NoError(t, err)

	diff := "diff --git a/lib/demo.c b/lib/demo.c\n" + unified
	files := Parse(diff, nil)
	require.Len(t, files, 1)

	// Reassembling headers and raw lines reproduces the hunk body text.
	var rebuilt strings.Builder
	for _, hunk := range files[0].Hunks {
		rebuilt.WriteString(hunk.Header + "\n")
		for _, line := range hunk.Lines {
			rebuilt.WriteString(line + "\n")
		}
	}

	idx := strings.Index(diff, "@@")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, strings.TrimRight(diff[idx:], "\n"), strings.TrimRight(rebuilt.String(), "\n"))
}

func TestCountAddedLines(t *testing.T) {
	content := "@@ -1,3 +1,5 @@\n+one\n+two\n ctx\n-gone\n+++ b/file.c\n"
	assert.Equal(t, 2, CountAddedLines(content))
}

func TestCountTotalLines(t *testing.T) {
	assert.Equal(t, 4, CountTotalLines("@@ header\n+a\n-b\n ctx\n\n  \n"))
	assert.Equal(t, 1, CountTotalLines("single"))
}

func TestNewStart(t *testing.T) {
	start, count, ok := NewStart("@@ -100,6 +100,8 @@ foo")
	require.True(t, ok)
	assert.Equal(t, 100, start)
	assert.Equal(t, 8, count)

	// Combined headers yield the first range; omitted counts default to 1.
	start, count, ok = NewStart("-10,2 +12 + -30,4 +33,5")
	require.True(t, ok)
	assert.Equal(t, 12, start)
	assert.Equal(t, 1, count)

	_, _, ok = NewStart("no ranges here")
	assert.False(t, ok)
}
