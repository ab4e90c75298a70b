package types

// UnknownSymbol is the placeholder used when no enclosing symbol can be
// resolved for a change. It is excluded from group symbol sets and never
// triggers definition extraction.
const UnknownSymbol = "unknown"

// Hunk represents one @@-delimited region of a unified diff. Lines are kept
// exactly as they appeared in the diff, including the leading tag character.
type Hunk struct {
	// Header is the full hunk header line, "@@ -a,b +c,d @@ section".
	Header string

	// Location in the old and new file. Counts default to 1 when
	// the header omits them.
	OldStart int
	OldCount int
	NewStart int
	NewCount int

	// Section is the trailing context hint after the closing @@,
	// typically the enclosing function signature.
	Section string

	// Lines are the raw diff lines of the hunk body. The leading
	// character tags each line: '+' added, '-' removed, otherwise
	// context.
	Lines []string

	// Info is the analyzer record for the section's symbol, when one
	// was produced. Nil otherwise.
	Info *SymbolInfo
}

// FileChange represents all hunks of a single file in a diff.
type FileChange struct {
	// Path is the post-image path (the b/ side of the diff header).
	Path string

	// OldPath is the pre-image path (the a/ side). Differs from Path
	// on renames.
	OldPath string

	Hunks []*Hunk
}
