package types

// SymbolInfo describes one modified function as reported by the analyzer
// (external or heuristic): the types it references, the functions known to
// call it, and the functions it calls.
type SymbolInfo struct {
	Name    string
	Types   []string
	Callers []string
	Calls   []string
}

// Clone returns a deep copy. Merging during aggregation mutates slices, so
// shared table entries are cloned before attachment.
func (si *SymbolInfo) Clone() *SymbolInfo {
	if si == nil {
		return nil
	}
	cp := &SymbolInfo{Name: si.Name}
	cp.Types = append(cp.Types, si.Types...)
	cp.Callers = append(cp.Callers, si.Callers...)
	cp.Calls = append(cp.Calls, si.Calls...)
	return cp
}

// MergeSymbolInfo combines two analyzer records: the first non-empty name
// wins, list fields are unioned preserving first-seen order. Either argument
// may be nil.
func MergeSymbolInfo(a, b *SymbolInfo) *SymbolInfo {
	if a == nil {
		return b.Clone()
	}
	if b == nil {
		return a.Clone()
	}
	merged := a.Clone()
	if merged.Name == "" {
		merged.Name = b.Name
	}
	merged.Types = unionOrdered(merged.Types, b.Types)
	merged.Callers = unionOrdered(merged.Callers, b.Callers)
	merged.Calls = unionOrdered(merged.Calls, b.Calls)
	return merged
}

func unionOrdered(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, lst := range [][]string{a, b} {
		for _, s := range lst {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// SymbolTable collects everything the analyzer learned about one diff:
// modified functions keyed by name, plus modified type and macro names.
type SymbolTable struct {
	Functions []*SymbolInfo
	Types     []string
	Macros    []string

	index map[string]*SymbolInfo
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{index: make(map[string]*SymbolInfo)}
}

// Add inserts a function record, merging with any existing record of the
// same name.
func (t *SymbolTable) Add(info *SymbolInfo) {
	if info == nil || info.Name == "" {
		return
	}
	if t.index == nil {
		t.index = make(map[string]*SymbolInfo)
	}
	if existing, ok := t.index[info.Name]; ok {
		merged := MergeSymbolInfo(existing, info)
		*existing = *merged
		return
	}
	cp := info.Clone()
	t.index[cp.Name] = cp
	t.Functions = append(t.Functions, cp)
}

// AddType records a modified type name, de-duplicated, first-seen order.
func (t *SymbolTable) AddType(name string) {
	t.Types = appendUnique(t.Types, name)
}

// AddMacro records a modified macro name, de-duplicated, first-seen order.
func (t *SymbolTable) AddMacro(name string) {
	t.Macros = appendUnique(t.Macros, name)
}

// Lookup returns the record for a function name, or nil.
func (t *SymbolTable) Lookup(name string) *SymbolInfo {
	if t == nil || name == "" {
		return nil
	}
	return t.index[name]
}

// Len returns the number of modified functions in the table.
func (t *SymbolTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Functions)
}

func appendUnique(list []string, s string) []string {
	if s == "" {
		return list
	}
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}
