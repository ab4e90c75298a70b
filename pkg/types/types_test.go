package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChange_ID(t *testing.T) {
	c := &Change{Group: 3, Seq: 7}
	assert.Equal(t, "FILE-3-CHANGE-7", c.ID())
}

func TestChange_Validate(t *testing.T) {
	valid := &Change{Group: 1, Seq: 1, File: "net/core/dev.c", Content: "+line"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		change  *Change
		wantErr error
	}{
		{"missing file", &Change{Group: 1, Seq: 1, Content: "+x"}, ErrMissingFile},
		{"empty content", &Change{Group: 1, Seq: 1, File: "a.c"}, ErrEmptyContent},
		{"unnumbered", &Change{File: "a.c", Content: "+x"}, ErrUnnumberedChange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.change.Validate(), tt.wantErr)
		})
	}
}

func TestMergeSymbolInfo_FirstNameWinsListsUnion(t *testing.T) {
	a := &SymbolInfo{
		Name:  "tcp_rcv",
		Types: []string{"sk_buff"},
		Calls: []string{"kfree_skb", "tcp_ack"},
	}
	b := &SymbolInfo{
		Name:    "tcp_rcv_established",
		Types:   []string{"sk_buff", "tcp_sock"},
		Callers: []string{"tcp_v4_do_rcv"},
		Calls:   []string{"tcp_ack"},
	}

	merged := MergeSymbolInfo(a, b)
	require.NotNil(t, merged)
	assert.Equal(t, "tcp_rcv", merged.Name)
	assert.Equal(t, []string{"sk_buff", "tcp_sock"}, merged.Types)
	assert.Equal(t, []string{"tcp_v4_do_rcv"}, merged.Callers)
	assert.Equal(t, []string{"kfree_skb", "tcp_ack"}, merged.Calls)
}

func TestMergeSymbolInfo_NilArguments(t *testing.T) {
	info := &SymbolInfo{Name: "foo"}
	assert.Equal(t, "foo", MergeSymbolInfo(nil, info).Name)
	assert.Equal(t, "foo", MergeSymbolInfo(info, nil).Name)
	assert.Nil(t, MergeSymbolInfo(nil, nil))
}

func TestSymbolTable_AddMergesByName(t *testing.T) {
	table := NewSymbolTable()
	table.Add(&SymbolInfo{Name: "parse_header", Calls: []string{"validate"}})
	table.Add(&SymbolInfo{Name: "parse_header", Calls: []string{"validate", "log_error"}})
	table.Add(&SymbolInfo{Name: "emit"})

	assert.Equal(t, 2, table.Len())
	got := table.Lookup("parse_header")
	require.NotNil(t, got)
	assert.Equal(t, []string{"validate", "log_error"}, got.Calls)
	assert.Nil(t, table.Lookup("missing"))
}

func TestSymbolTable_TypeAndMacroDedup(t *testing.T) {
	table := NewSymbolTable()
	table.AddType("sk_buff")
	table.AddType("sk_buff")
	table.AddMacro("MAX_ORDER")
	table.AddMacro("MAX_ORDER")

	assert.Equal(t, []string{"sk_buff"}, table.Types)
	assert.Equal(t, []string{"MAX_ORDER"}, table.Macros)
}

func TestFileGroup_AbsorbDedupsFiles(t *testing.T) {
	g1 := &FileGroup{Num: 1, Files: []string{"a.c"}, TotalLines: 10}
	g2 := &FileGroup{Num: 2, Files: []string{"a.c", "b.c"}, TotalLines: 5}
	g1.Absorb(g2)

	assert.Equal(t, []string{"a.c", "b.c"}, g1.Files)
	assert.Equal(t, 15, g1.TotalLines)
	assert.Equal(t, "FILE-1", g1.ID())
}
