package segmenter

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dshills/diffscope/internal/symbols"
	"github.com/dshills/diffscope/pkg/types"
)

// signatureLookahead bounds the forward scan for an opening brace when a
// definition's signature spans multiple lines.
const signatureLookahead = 20

// Patterns matching the first line of a new function definition on an added
// line. The trailing [^;]* excludes prototypes.
var newFuncPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\+\s*(?:static\s+)?(?:inline\s+)?(?:__always_inline\s+)?(?:noinline\s+)?(?:const\s+)?(?:\w+\s+\*?\s*)+(\w+)\s*\([^;]*$`),
	regexp.MustCompile(`^\+\s*(?:static\s+)?(?:\w+\s+\*?\s*)*(\w+)\s*\(\s*$`),
}

// bareCallRe matches an added line opening with "name(", used when the
// return type sits on the previous added line.
var bareCallRe = regexp.MustCompile(`^\+\s*(\w+)\s*\(`)

// returnTypeTailRe matches a line ending in a bare return type, the first
// half of a two-line signature.
var returnTypeTailRe = regexp.MustCompile(`(?:static|int|void|bool|u\d+|s\d+|long|unsigned)\s*$`)

// span is one new function definition found inside a hunk: its name and the
// inclusive range of hunk-line indices it covers.
type span struct {
	name  string
	start int
	end   int
}

// Split breaks one hunk into per-symbol segments. A hunk with no new
// function definitions yields one segment (or two, when the hunk opens in
// one function and the changes continue into the next); a hunk with N new
// definitions yields N new-definition segments.
func Split(hunk *types.Hunk, table *types.SymbolTable) []*types.Segment {
	spans := findNewFunctions(hunk.Lines)

	switch len(spans) {
	case 0:
		return splitModification(hunk, table)

	case 1:
		name := spans[0].name
		return []*types.Segment{{
			Symbol:        name,
			Header:        hunk.Header,
			Content:       hunk.Header + "\n" + strings.Join(hunk.Lines, "\n"),
			NewDefinition: true,
			Info:          lookupInfo(table, hunk, name),
		}}

	default:
		// Multiple new functions in one hunk: each gets its own slice of
		// the hunk with an approximate header, since the original line
		// numbers no longer apply to the sub-slice.
		rangeText := headerRange(hunk.Header)
		segments := make([]*types.Segment, 0, len(spans))
		for _, sp := range spans {
			header := "@@ (within " + rangeText + ") @@ " + sp.name
			lines := hunk.Lines[sp.start : sp.end+1]
			segments = append(segments, &types.Segment{
				Symbol:        sp.name,
				Header:        header,
				Content:       header + "\n" + strings.Join(lines, "\n"),
				NewDefinition: true,
				Info:          lookupInfo(table, hunk, sp.name),
			})
		}
		return segments
	}
}

// splitModification handles hunks that introduce no new functions. The @@
// header names the function in scope where the hunk starts; when the hunk
// opens with trailing context from that function and the actual changes sit
// in the next function down, the header is wrong and the hunk body knows
// better.
func splitModification(hunk *types.Hunk, table *types.SymbolTable) []*types.Segment {
	headerFunc := symbols.FuncFromHint(hunk.Section)

	bodyFunc, bodyIdx, found := findChangedFunction(hunk.Lines)
	if !found {
		return []*types.Segment{{
			Symbol:  headerFunc,
			Header:  hunk.Header,
			Content: hunk.Header + "\n" + strings.Join(hunk.Lines, "\n"),
			Info:    lookupInfo(table, hunk, headerFunc),
		}}
	}

	if !hasModifications(hunk.Lines[:bodyIdx]) {
		// Only the body function is touched; the header's function
		// contributed nothing but context.
		return []*types.Segment{{
			Symbol:  bodyFunc,
			Header:  hunk.Header,
			Content: hunk.Header + "\n" + strings.Join(hunk.Lines, "\n"),
			Info:    lookupInfo(table, hunk, bodyFunc),
		}}
	}

	// Changes on both sides of the boundary: one segment for the tail of
	// the header's function, one for the body function.
	before := hunk.Lines[:bodyIdx]
	after := hunk.Lines[bodyIdx:]
	return []*types.Segment{
		{
			Symbol:  headerFunc,
			Header:  hunk.Header,
			Content: hunk.Header + "\n" + strings.Join(before, "\n"),
			Info:    lookupInfo(table, hunk, headerFunc),
		},
		{
			Symbol:  bodyFunc,
			Header:  hunk.Header,
			Content: hunk.Header + "\n" + strings.Join(after, "\n"),
			Info:    lookupInfo(table, hunk, bodyFunc),
		},
	}
}

// findNewFunctions scans a hunk's raw lines for added function definitions
// and delimits each one by brace depth over added and context lines.
func findNewFunctions(lines []string) []span {
	var spans []span

	i := 0
	for i < len(lines) {
		line := lines[i]
		if !strings.HasPrefix(line, "+") {
			i++
			continue
		}

		name := matchNewFunction(lines, i)
		if name == "" || isControlKeyword(name) {
			i++
			continue
		}

		// Found a definition; walk forward until the brace depth
		// returns to zero.
		depth := 0
		foundOpening := false
		end := i
		for j := i; j < len(lines); j++ {
			check := lines[j]
			if !strings.HasPrefix(check, "+") && !strings.HasPrefix(check, " ") {
				continue
			}
			content := check[1:]
			for _, ch := range content {
				switch ch {
				case '{':
					depth++
					foundOpening = true
				case '}':
					depth--
				}
			}
			if foundOpening && depth == 0 {
				end = j
				break
			}
		}

		if foundOpening {
			spans = append(spans, span{name: name, start: i, end: end})
			i = end + 1
			continue
		}
		i++
	}

	return spans
}

// matchNewFunction extracts the function name when lines[idx] opens a new
// definition, including two-line signatures where the return type ends the
// previous added line.
func matchNewFunction(lines []string, idx int) string {
	line := lines[idx]
	for _, re := range newFuncPatterns {
		if m := re.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	if idx > 0 {
		prev := lines[idx-1]
		if strings.HasPrefix(prev, "+") && returnTypeTailRe.MatchString(prev) {
			if m := bareCallRe.FindStringSubmatch(line); m != nil {
				return m[1]
			}
		}
	}
	return ""
}

// findChangedFunction looks for a top-level function definition inside the
// hunk body that the changes belong to. It inspects only the first
// definition-shaped candidate: when that candidate has no modified lines
// after it, the search yields nothing.
func findChangedFunction(lines []string) (string, int, bool) {
	for i, line := range lines {
		content := diffLineContent(line)
		if content == "" && line == "" {
			continue
		}

		// Definitions start at column 0.
		if content == "" || unicode.IsSpace(rune(content[0])) {
			continue
		}
		trimmed := strings.TrimSpace(content)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") ||
			strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if trimmed == "}" || (strings.HasSuffix(trimmed, ":") && !strings.Contains(trimmed, "(")) {
			continue
		}
		if !strings.Contains(trimmed, "(") {
			continue
		}
		if lastTokenIsControl(trimmed) {
			continue
		}
		if !braceFollows(lines, i, trimmed) {
			continue
		}

		name, ok := symbols.FuncNameFromLine(trimmed)
		if !ok {
			continue
		}

		if hasModifications(lines[i+1:]) {
			return name, i, true
		}
		return "", 0, false
	}
	return "", 0, false
}

// braceFollows reports whether the definition candidate's opening brace
// appears on the same line or within the signature lookahead.
func braceFollows(lines []string, idx int, trimmed string) bool {
	if strings.Contains(trimmed, "{") {
		return true
	}
	for j := idx + 1; j < len(lines) && j < idx+signatureLookahead; j++ {
		content := diffLineContent(lines[j])
		if lines[j] == "" {
			continue
		}
		if strings.Contains(content, "{") {
			return true
		}
		next := strings.TrimSpace(content)
		if next == "" {
			continue
		}
		isContinuation := (content != "" && unicode.IsSpace(rune(content[0]))) ||
			strings.HasSuffix(next, ",") ||
			strings.HasSuffix(next, "(") ||
			strings.HasSuffix(next, ")")
		if !isContinuation {
			break
		}
	}
	return false
}

// diffLineContent strips the one-character diff tag from a hunk line.
func diffLineContent(line string) string {
	if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-") {
		return line[1:]
	}
	return line
}

// hasModifications reports whether any line in the slice is an added or
// removed line (file markers excluded).
func hasModifications(lines []string) bool {
	for _, line := range lines {
		if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
			return true
		}
		if strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---") {
			return true
		}
	}
	return false
}

func lastTokenIsControl(trimmed string) bool {
	beforeParen := trimmed[:strings.Index(trimmed, "(")]
	fields := strings.Fields(beforeParen)
	if len(fields) == 0 {
		return false
	}
	switch fields[len(fields)-1] {
	case "if", "while", "for", "switch", "return", "sizeof", "typeof", "case", "else":
		return true
	}
	return false
}

func isControlKeyword(name string) bool {
	switch name {
	case "if", "for", "while", "switch", "return", "sizeof", "typeof":
		return true
	}
	return false
}

// headerRange returns the text between the @@ markers of a hunk header.
func headerRange(header string) string {
	parts := strings.Split(header, "@@")
	if len(parts) < 2 {
		return strings.TrimSpace(header)
	}
	return strings.TrimSpace(parts[1])
}

// lookupInfo resolves a segment's SymbolInfo: the analyzer table by symbol
// name first, the hunk's own annotation as fallback.
func lookupInfo(table *types.SymbolTable, hunk *types.Hunk, name string) *types.SymbolInfo {
	if name != types.UnknownSymbol {
		if rec := table.Lookup(name); rec != nil {
			return rec.Clone()
		}
	}
	if hunk.Info != nil {
		return hunk.Info.Clone()
	}
	return nil
}
