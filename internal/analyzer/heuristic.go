package analyzer

import (
	"sort"
	"strings"

	"github.com/dshills/diffscope/internal/symbols"
	"github.com/dshills/diffscope/pkg/types"
)

var cSourceExtensions = []string{".c", ".h", ".cpp", ".cc", ".cxx"}

// Heuristic builds a symbol table from the diff alone, without an external
// analyzer. For every C/C++ file it reconstructs each hunk's post-image
// view, resolves the enclosing symbol of every changed line by walk-back,
// and collects the calls made on added lines, attributed to their enclosing
// function. Caller information is not derivable from a diff and stays
// empty.
func Heuristic(diffText string) *types.SymbolTable {
	acc := newAccumulator()

	lines := strings.Split(diffText, "\n")
	i := 0
	for i < len(lines) {
		if !strings.HasPrefix(lines[i], "+++") || !isCSource(lines[i]) {
			i++
			continue
		}
		i = acc.scanFile(lines, i+1)
	}

	return acc.table()
}

func isCSource(fileMarker string) bool {
	for _, ext := range cSourceExtensions {
		if strings.Contains(fileMarker, ext) {
			return true
		}
	}
	return false
}

// scanFile walks one file's hunks starting just after its "+++" marker and
// returns the index of the next file marker (or the end of input).
func (a *accumulator) scanFile(lines []string, idx int) int {
	for idx < len(lines) {
		switch {
		case strings.HasPrefix(lines[idx], "@@"):
			end := hunkEnd(lines, idx+1)
			a.scanHunk(lines[idx], lines[idx+1:end])
			idx = end
		case strings.HasPrefix(lines[idx], "---") || strings.HasPrefix(lines[idx], "+++"):
			return idx
		default:
			idx++
		}
	}
	return idx
}

// hunkEnd returns the index of the first line after the hunk body starting
// at idx.
func hunkEnd(lines []string, idx int) int {
	for idx < len(lines) {
		if strings.HasPrefix(lines[idx], "@@") ||
			strings.HasPrefix(lines[idx], "---") ||
			strings.HasPrefix(lines[idx], "+++") {
			return idx
		}
		idx++
	}
	return idx
}

// accumulator gathers modified symbols and per-function call sets across
// hunks, first-seen order tracked for deterministic output.
type accumulator struct {
	functions     map[string]map[string]struct{} // function -> set of calls
	functionOrder []string
	types         []string
	macros        []string
}

func newAccumulator() *accumulator {
	return &accumulator{functions: make(map[string]map[string]struct{})}
}

func (a *accumulator) markFunction(name string) {
	if name == "" || name == types.UnknownSymbol {
		return
	}
	if _, ok := a.functions[name]; !ok {
		a.functions[name] = make(map[string]struct{})
		a.functionOrder = append(a.functionOrder, name)
	}
}

func (a *accumulator) addCalls(fn string, calls []string) {
	a.markFunction(fn)
	set := a.functions[fn]
	for _, call := range calls {
		if call != fn {
			set[call] = struct{}{}
		}
	}
}

// scanHunk reconstructs the hunk's post-image view and resolves every
// changed line. Removed lines are excluded from the view but their
// positions still count as modified.
func (a *accumulator) scanHunk(header string, body []string) {
	headerFunc, hasHeaderFunc := symbols.HeaderFunc(header)
	if hasHeaderFunc {
		a.markFunction(headerFunc)
	}

	var (
		view        []string
		modified    []int
		lineCalls   = make(map[int][]string)
		currentLine int
	)

	for _, line := range body {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			content := line[1:]
			view = append(view, content)
			modified = append(modified, currentLine)
			if calls := symbols.Calls(content); len(calls) > 0 {
				lineCalls[currentLine] = calls
			}
			currentLine++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			// Removed: the position is modified but the line is not
			// part of the post-image view.
			modified = append(modified, currentLine)
		case strings.HasPrefix(line, " "):
			view = append(view, line[1:])
			currentLine++
		case line == "":
			view = append(view, "")
			currentLine++
		}
	}

	if len(view) == 0 {
		return
	}

	for _, idx := range modified {
		decl, ok := symbols.Enclosing(view, idx)
		if !ok {
			continue
		}
		key, ok := symbols.KeyFromDecl(decl)
		if !ok {
			continue
		}
		switch {
		case strings.HasPrefix(key, "#"):
			a.macros = appendUnique(a.macros, key[1:])
		case strings.HasSuffix(key, "()"):
			a.markFunction(key[:len(key)-2])
		default:
			a.types = appendUnique(a.types, key)
		}
	}

	for idx, calls := range lineCalls {
		if decl, ok := symbols.Enclosing(view, idx); ok {
			if name, ok := symbols.FuncName(decl); ok {
				a.addCalls(name, calls)
				continue
			}
		}
		if hasHeaderFunc {
			a.addCalls(headerFunc, calls)
		}
	}
}

// table renders the accumulated symbols: functions sorted by name, each
// function's calls sorted, types and macros in first-seen order.
func (a *accumulator) table() *types.SymbolTable {
	table := types.NewSymbolTable()

	names := make([]string, len(a.functionOrder))
	copy(names, a.functionOrder)
	sort.Strings(names)

	for _, name := range names {
		calls := make([]string, 0, len(a.functions[name]))
		for call := range a.functions[name] {
			calls = append(calls, call)
		}
		sort.Strings(calls)
		table.Add(&types.SymbolInfo{Name: name, Calls: calls})
	}
	for _, name := range a.types {
		table.AddType(name)
	}
	for _, name := range a.macros {
		table.AddMacro(name)
	}
	return table
}

func appendUnique(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}
