package types

import "fmt"

// Segment is one symbol's slice of one hunk: the intermediate unit between
// tokenizing and aggregation.
type Segment struct {
	// Symbol is the resolved symbol name, or UnknownSymbol.
	Symbol string

	// Header is the hunk header covering this segment. Regenerated for
	// segments split out of a multi-function hunk.
	Header string

	// Content is the header line plus the segment's raw diff lines,
	// newline-joined.
	Content string

	// NewDefinition marks a segment that introduces a new function
	// definition rather than modifying an existing one.
	NewDefinition bool

	// Info is the analyzer record for Symbol, when one exists.
	Info *SymbolInfo
}

// Change is one reviewable unit: one or more merged segments of a single
// file. Group and Seq are assigned by the group builder.
type Change struct {
	// Identity, 1-based, valid after grouping.
	Group int
	Seq   int

	File   string
	Symbol string

	// Header is the hunk header, or the " + "-joined headers of merged
	// segments.
	Header string

	// Content is the diff text of the change: merged segment contents
	// joined by blank lines.
	Content string

	// TotalLines counts added plus removed lines in Content.
	TotalLines int

	// NewDefinition marks a change built from new-function segments.
	NewDefinition bool

	// Info is the merged analyzer record for the change's symbols.
	Info *SymbolInfo

	// Definition is the full source text of the enclosing definition,
	// extracted from the working tree when no analyzer ran. Empty when
	// unavailable.
	Definition string
}

// ID renders the change's review identity, "FILE-<group>-CHANGE-<seq>".
func (c *Change) ID() string {
	return fmt.Sprintf("FILE-%d-CHANGE-%d", c.Group, c.Seq)
}

// Validate checks the fields the run store requires.
func (c *Change) Validate() error {
	if c.File == "" {
		return ErrMissingFile
	}
	if c.Content == "" {
		return ErrEmptyContent
	}
	if c.Group < 1 || c.Seq < 1 {
		return ErrUnnumberedChange
	}
	return nil
}
