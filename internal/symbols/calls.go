package symbols

import (
	"regexp"
	"strings"
)

var callRe = regexp.MustCompile(`\b([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`)

// Calls extracts the function calls made on one line of code: identifiers
// immediately followed by an opening paren, minus C keywords. Comment and
// preprocessor lines yield nothing. First-seen order, de-duplicated.
func Calls(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "#") {
		return nil
	}

	var calls []string
	seen := make(map[string]struct{})
	for _, m := range callRe.FindAllStringSubmatch(trimmed, -1) {
		name := m[1]
		if IsCKeyword(name) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		calls = append(calls, name)
	}
	return calls
}
