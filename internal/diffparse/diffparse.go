package diffparse

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/dshills/diffscope/internal/symbols"
	"github.com/dshills/diffscope/pkg/types"
)

var (
	fileHeaderRe = regexp.MustCompile(`^diff --git a/(.+) b/(.+)`)
	hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@ ?(.*)`)
	newStartRe   = regexp.MustCompile(`\+(\d+)(?:,(\d+))?`)
)

// Parse tokenizes unified diff text into per-file hunk lists. When table is
// non-nil, each hunk whose section hint resolves to a function in the table
// is annotated with that function's SymbolInfo. Unrecognized lines are
// skipped; Parse never fails.
func Parse(diffText string, table *types.SymbolTable) []*types.FileChange {
	var (
		files   []*types.FileChange
		current *types.FileChange
		hunk    *types.Hunk
	)

	flushHunk := func() {
		if current != nil && hunk != nil {
			current.Hunks = append(current.Hunks, hunk)
		}
		hunk = nil
	}

	for _, line := range strings.Split(diffText, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			flushHunk()
			if current != nil {
				files = append(files, current)
				current = nil
			}
			if m := fileHeaderRe.FindStringSubmatch(line); m != nil {
				current = &types.FileChange{OldPath: m[1], Path: m[2]}
			}

		case strings.HasPrefix(line, "@@ "):
			flushHunk()
			m := hunkHeaderRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			section := strings.TrimSpace(m[5])
			hunk = &types.Hunk{
				Header:   line,
				OldStart: atoi(m[1]),
				OldCount: atoiOr(m[2], 1),
				NewStart: atoi(m[3]),
				NewCount: atoiOr(m[4], 1),
				Section:  section,
				Info:     lookupSection(table, section),
			}

		default:
			if hunk == nil {
				continue
			}
			if line == "" || line[0] == '+' || line[0] == '-' || line[0] == ' ' {
				hunk.Lines = append(hunk.Lines, line)
			}
		}
	}

	flushHunk()
	if current != nil {
		files = append(files, current)
	}
	return files
}

// lookupSection resolves a hunk's section hint against the analyzer table.
func lookupSection(table *types.SymbolTable, section string) *types.SymbolInfo {
	if table == nil || section == "" {
		return nil
	}
	name := symbols.FuncFromHint(section)
	if name == types.UnknownSymbol {
		return nil
	}
	rec := table.Lookup(name)
	if rec == nil {
		return nil
	}
	return rec.Clone()
}

// CountAddedLines counts added lines in a diff content string: prefix "+"
// but not "++", so "+++" file markers never count.
func CountAddedLines(content string) int {
	count := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "++") {
			count++
		}
	}
	return count
}

// CountTotalLines counts all lines of a content string after trailing
// whitespace is stripped. Headers and context lines count; this is the
// total every size cap compares against.
func CountTotalLines(content string) int {
	trimmed := strings.TrimRightFunc(content, unicode.IsSpace)
	return len(strings.Split(trimmed, "\n"))
}

// NewStart extracts the first "+start[,count]" range from a header,
// combined headers included. Count defaults to 1.
func NewStart(header string) (start, count int, ok bool) {
	m := newStartRe.FindStringSubmatch(header)
	if m == nil {
		return 0, 0, false
	}
	return atoi(m[1]), atoiOr(m[2], 1), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	return atoi(s)
}
