package symbols

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dshills/diffscope/pkg/types"
)

// walkBackWindow is how many lines Enclosing scans above the target line.
const walkBackWindow = 50

// braceLookahead bounds the forward scan for a multi-line signature's
// opening brace.
const braceLookahead = 20

var typePrefixes = []string{
	"typedef struct ", "typedef union ", "typedef enum ",
	"struct ", "union ", "enum ",
}

// Enclosing walks backward from lines[idx] to find the enclosing function,
// type, or macro definition. It returns the trimmed declaration line. The
// line at idx itself wins when it is a single-line typedef or a #define.
func Enclosing(lines []string, idx int) (string, bool) {
	if idx < 0 || idx >= len(lines) {
		return "", false
	}

	current := strings.TrimSpace(lines[idx])
	if strings.HasPrefix(current, "typedef ") && strings.HasSuffix(current, ";") {
		return current, true
	}
	if strings.HasPrefix(current, "#define ") {
		return current, true
	}

	for i := idx; i >= 0 && i >= idx-walkBackWindow; i-- {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") {
			continue
		}
		if isLabel(line) {
			continue
		}
		if IsFunctionDefinition(lines, i) {
			return trimmed, true
		}
		if isTypeDefinition(line) {
			return trimmed, true
		}
		if strings.HasPrefix(trimmed, "#define ") {
			return trimmed, true
		}
	}

	return "", false
}

// isLabel reports whether a column-0 line is a label rather than a
// definition: case/default labels, C++ access specifiers, goto targets.
func isLabel(line string) bool {
	if line == "" || unicode.IsSpace(rune(line[0])) {
		return false
	}
	trimmed := strings.TrimSpace(line)
	if !strings.HasSuffix(trimmed, ":") {
		return false
	}
	if strings.HasPrefix(trimmed, "case ") || strings.HasPrefix(trimmed, "default:") {
		return true
	}
	switch trimmed {
	case "public:", "private:", "protected:":
		return true
	}
	label := strings.TrimRight(trimmed, ":")
	return label != "" && identLike(label)
}

// IsFunctionDefinition reports whether lines[idx] looks like the first line
// of a function definition. Multi-line signatures are accepted when the
// opening brace appears within braceLookahead lines with only continuation
// lines in between.
func IsFunctionDefinition(lines []string, idx int) bool {
	line := lines[idx]

	// Allow at most one character of leading whitespace.
	stripped := strings.TrimLeftFunc(line, unicode.IsSpace)
	if line != "" && len(line)-len(stripped) > 1 {
		return false
	}

	trimmed := strings.TrimSpace(line)
	if !strings.Contains(trimmed, "(") {
		return false
	}
	if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") {
		return false
	}
	for _, kw := range [...]string{"if", "while", "for", "switch", "return", "sizeof", "typeof", "case"} {
		if strings.HasPrefix(trimmed, kw+"(") || strings.HasPrefix(trimmed, kw+" (") {
			return false
		}
	}

	if strings.Contains(trimmed, "{") {
		return true
	}
	for j := idx + 1; j < len(lines) && j < idx+braceLookahead; j++ {
		next := lines[j]
		if strings.Contains(next, "{") {
			return true
		}
		nextTrimmed := strings.TrimSpace(next)
		if nextTrimmed == "" {
			continue
		}
		isContinuation := unicode.IsSpace(rune(next[0])) ||
			strings.HasSuffix(nextTrimmed, ",") ||
			strings.HasSuffix(nextTrimmed, "(") ||
			strings.HasSuffix(nextTrimmed, ")")
		if !isContinuation {
			break
		}
	}
	return false
}

// isTypeDefinition reports whether a line opens a struct/union/enum body.
func isTypeDefinition(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range typePrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return strings.Contains(trimmed, "{")
		}
	}
	return false
}

var leadingIdentRe = regexp.MustCompile(`^\w+`)

// KeyFromDecl converts a declaration line into its symbol key: "name()" for
// functions, "struct name" (union/enum likewise) for tagged types, "#NAME"
// for macros, "typedef name" for single-line typedefs.
func KeyFromDecl(decl string) (string, bool) {
	trimmed := strings.TrimSpace(decl)

	if after, ok := strings.CutPrefix(trimmed, "#define "); ok {
		if name := leadingIdentRe.FindString(strings.TrimSpace(after)); name != "" {
			return "#" + name, true
		}
		return "", false
	}

	for _, prefix := range typePrefixes {
		if !strings.HasPrefix(trimmed, prefix) {
			continue
		}
		// "struct foo *alloc_foo(" is a function returning a struct
		// pointer, not a type definition: the paren comes before any
		// brace.
		parenPos := strings.Index(trimmed, "(")
		bracePos := strings.Index(trimmed, "{")
		if parenPos >= 0 && (bracePos < 0 || parenPos < bracePos) {
			if name := identBeforeParen(trimmed, parenPos); name != "" {
				return name + "()", true
			}
			return "", false
		}
		after := strings.TrimSpace(trimmed[len(prefix):])
		if name := leadingIdentRe.FindString(after); name != "" {
			kw := strings.TrimSpace(strings.TrimPrefix(prefix, "typedef "))
			return kw + " " + name, true
		}
		return "", false
	}

	if strings.HasPrefix(trimmed, "typedef ") && strings.HasSuffix(trimmed, ";") {
		withoutSemi := strings.TrimSpace(trimmed[:len(trimmed)-1])
		if fields := strings.Fields(withoutSemi); len(fields) > 0 {
			return "typedef " + fields[len(fields)-1], true
		}
		return "", false
	}

	if parenPos := strings.Index(trimmed, "("); parenPos > 0 {
		if name := identBeforeParen(trimmed, parenPos); name != "" {
			return name + "()", true
		}
	}
	return "", false
}

// FuncName extracts a bare function name from a symbol key or a raw
// declaration line.
func FuncName(symbol string) (string, bool) {
	trimmed := strings.TrimSpace(symbol)
	if strings.HasSuffix(trimmed, "()") {
		return trimmed[:len(trimmed)-2], true
	}
	if parenPos := strings.Index(trimmed, "("); parenPos > 0 {
		if name := identBeforeParen(trimmed, parenPos); name != "" {
			return name, true
		}
	}
	return "", false
}

// FuncNameFromLine extracts the function name from a definition line,
// rejecting keywords and non-identifier tokens.
func FuncNameFromLine(line string) (string, bool) {
	parenPos := strings.Index(line, "(")
	if parenPos == -1 {
		return "", false
	}
	fields := strings.Fields(strings.TrimSpace(line[:parenPos]))
	if len(fields) == 0 {
		return "", false
	}
	name := strings.TrimLeft(fields[len(fields)-1], "*&")
	if name == "" || IsCKeyword(name) {
		return "", false
	}
	first := rune(name[0])
	if !unicode.IsLetter(first) && first != '_' {
		return "", false
	}
	if !identLike(name) {
		return "", false
	}
	return name, true
}

// identBeforeParen returns the last whitespace-separated token before the
// paren, stripped of pointer/reference markers, when it is identifier-like.
func identBeforeParen(s string, parenPos int) string {
	fields := strings.Fields(s[:parenPos])
	if len(fields) == 0 {
		return ""
	}
	name := strings.TrimLeft(fields[len(fields)-1], "*&")
	if name != "" && identLike(name) {
		return name
	}
	return ""
}

func identLike(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return s != ""
}

var hintPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\w+)\s*\([^)]*\)\s*$`),
	regexp.MustCompile(`(\w+)\s*\($`),
	regexp.MustCompile(`^(?:static\s+)?(?:\w+\s+\*?\s*)?(\w+)\s*\(`),
	regexp.MustCompile(`SYSCALL_DEFINE\d+\((\w+)`),
	regexp.MustCompile(`DEFINE_\w+\((\w+)`),
	regexp.MustCompile(`^struct\s+(\w+)`),
}

var nonIdentRe = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// FuncFromHint extracts a symbol name from a hunk header's trailing section
// hint. It never fails: unextractable hints yield the "unknown" placeholder.
func FuncFromHint(hint string) string {
	if hint == "" {
		return types.UnknownSymbol
	}
	for _, re := range hintPatterns {
		if m := re.FindStringSubmatch(hint); m != nil {
			return m[1]
		}
	}
	words := strings.Fields(hint)
	if len(words) > 0 {
		if cleaned := nonIdentRe.ReplaceAllString(words[len(words)-1], ""); cleaned != "" {
			return cleaned
		}
	}
	return types.UnknownSymbol
}

// HeaderFunc extracts the function name from a full "@@ ... @@ section" hunk
// header line, keyword-checked. Used when attributing calls that the
// walk-back could not place.
func HeaderFunc(header string) (string, bool) {
	if !strings.HasPrefix(header, "@@") {
		return "", false
	}
	parts := strings.SplitN(header, "@@", 3)
	if len(parts) < 3 {
		return "", false
	}
	ctx := strings.TrimSpace(parts[2])
	if ctx == "" {
		return "", false
	}
	parenPos := strings.Index(ctx, "(")
	if parenPos > 0 {
		fields := strings.Fields(ctx[:parenPos])
		if len(fields) > 0 {
			name := strings.TrimLeft(fields[len(fields)-1], "*")
			if name != "" && identLike(name) && !IsCKeyword(name) {
				return name, true
			}
		}
	}
	return "", false
}
