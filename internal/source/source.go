package source

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	// startWindow bounds the backward scan for a definition's first line.
	startWindow = 100

	// endScanLines bounds the forward scan for the matching close brace.
	endScanLines = 2000

	// truncateChars is the definition length past which only the first
	// truncateLines lines are returned.
	truncateChars = 10000
	truncateLines = 100

	truncationMarker = "\n... [truncated, definition too long]\n"
)

// Definition extracts the full text of the function or type definition
// enclosing the given 1-based line of a working-tree file. Extraction is
// best effort: any read failure or unresolvable definition returns
// ok=false, never an error.
func Definition(root, path string, newStart int) (string, bool) {
	full := path
	if root != "" {
		full = filepath.Join(root, path)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", false
	}
	lines := strings.SplitAfter(string(data), "\n")

	target := newStart - 1
	if target < 0 || target >= len(lines) {
		return "", false
	}

	start, ok := findStart(lines, target)
	if !ok {
		return "", false
	}
	end, ok := findEnd(lines, start)
	if !ok {
		return "", false
	}

	definition := strings.Join(lines[start:end+1], "")
	if len(definition) > truncateChars {
		keep := lines[start : end+1]
		if len(keep) > truncateLines {
			keep = keep[:truncateLines]
		}
		return strings.Join(keep, "") + truncationMarker, true
	}
	return definition, true
}

// findStart walks backward from the target line looking for a column-0
// definition head: a signature with its opening brace on the same line or
// within a short lookahead, or a struct/union/enum opening a body.
func findStart(lines []string, target int) (int, bool) {
	for i := target; i >= 0 && i >= target-startWindow; i-- {
		line := lines[i]
		stripped := strings.TrimSpace(line)

		if stripped == "" || strings.HasPrefix(stripped, "//") || strings.HasPrefix(stripped, "/*") {
			continue
		}
		if strings.HasPrefix(stripped, "#") && !strings.HasPrefix(stripped, "#define") {
			continue
		}
		if line == "" || unicode.IsSpace(rune(line[0])) {
			continue
		}

		if strings.Contains(stripped, "(") {
			for j := i; j < len(lines) && j < i+20; j++ {
				if strings.Contains(lines[j], "{") {
					return i, true
				}
				if j > i && strings.TrimSpace(lines[j]) != "" && !strings.HasPrefix(strings.TrimSpace(lines[j]), "{") {
					prev := strings.TrimSpace(lines[j-1])
					if !strings.HasSuffix(prev, ",") && !strings.HasSuffix(prev, "(") {
						break
					}
				}
			}
		}

		if hasTypePrefix(stripped) {
			if strings.Contains(stripped, "{") {
				return i, true
			}
			for j := i + 1; j < len(lines) && j < i+10; j++ {
				if strings.Contains(lines[j], "{") {
					return i, true
				}
				if strings.TrimSpace(lines[j]) != "" && !strings.HasPrefix(strings.TrimSpace(lines[j]), "{") {
					break
				}
			}
		}
	}
	return 0, false
}

func hasTypePrefix(stripped string) bool {
	for _, prefix := range []string{
		"struct ", "union ", "enum ",
		"typedef struct ", "typedef union ", "typedef enum ",
	} {
		if strings.HasPrefix(stripped, prefix) {
			return true
		}
	}
	return false
}

// findEnd scans forward from the definition head for the brace that closes
// it. Braces inside string and character literals and inside comments do
// not count.
func findEnd(lines []string, start int) (int, bool) {
	var (
		depth          int
		foundOpening   bool
		inString       bool
		inChar         bool
		inBlockComment bool
	)

	for i := start; i < len(lines) && i < start+endScanLines; i++ {
		line := lines[i]
		j := 0
		for j < len(line) {
			ch := line[j]
			var next byte
			if j+1 < len(line) {
				next = line[j+1]
			}

			if inBlockComment {
				if ch == '*' && next == '/' {
					inBlockComment = false
					j += 2
					continue
				}
				j++
				continue
			}

			if !inString && !inChar {
				if ch == '/' && next == '/' {
					break // rest of line is comment
				}
				if ch == '/' && next == '*' {
					inBlockComment = true
					j += 2
					continue
				}
			}

			if ch == '"' && !inChar {
				if j > 0 && line[j-1] == '\\' {
					j++
					continue
				}
				inString = !inString
				j++
				continue
			}
			if ch == '\'' && !inString {
				if j > 0 && line[j-1] == '\\' {
					j++
					continue
				}
				inChar = !inChar
				j++
				continue
			}
			if inString || inChar {
				j++
				continue
			}

			switch ch {
			case '{':
				depth++
				foundOpening = true
			case '}':
				depth--
				if foundOpening && depth == 0 {
					return i, true
				}
			}
			j++
		}
	}
	return 0, false
}
