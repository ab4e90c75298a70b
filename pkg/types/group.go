package types

import "fmt"

// FileGroup is a numbered set of changes reviewed together. Groups start as
// single-file buckets and may absorb other files during coalescing and
// similarity merging.
type FileGroup struct {
	// Num is the 1-based group number, contiguous after renumbering.
	Num int

	// Files lists the paths contributing changes, first-seen order.
	Files []string

	Changes []*Change

	// TotalLines is the sum of the changes' TotalLines.
	TotalLines int
}

// ID renders the group identity, "FILE-<num>".
func (g *FileGroup) ID() string {
	return fmt.Sprintf("FILE-%d", g.Num)
}

// AddFile appends a path unless the group already contains it.
func (g *FileGroup) AddFile(path string) {
	for _, have := range g.Files {
		if have == path {
			return
		}
	}
	g.Files = append(g.Files, path)
}

// Absorb moves another group's files and changes into g. The caller
// renumbers afterwards.
func (g *FileGroup) Absorb(other *FileGroup) {
	for _, f := range other.Files {
		g.AddFile(f)
	}
	g.Changes = append(g.Changes, other.Changes...)
	g.TotalLines += other.TotalLines
}
