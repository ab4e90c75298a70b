package storage

import (
	"context"
	"time"

	"github.com/dshills/diffscope/internal/engine"
	"github.com/dshills/diffscope/pkg/types"
)

// Store persists segmentation runs so clients can fetch review context
// incrementally.
type Store interface {
	// Run operations
	SaveRun(ctx context.Context, run *Run, groups []*Group) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)

	// Group and change operations
	ListGroups(ctx context.Context, runID string) ([]*Group, error)
	ListChanges(ctx context.Context, groupID int64) ([]*Change, error)
	GetChange(ctx context.Context, runID, changeID string) (*Change, error)
	SearchChanges(ctx context.Context, runID, query string, limit int) ([]*Change, error)

	// Database operations
	Close() error
}

// Run is one persisted segmentation run.
type Run struct {
	ID            string
	RepoDir       string
	CommitSHA     string
	CommitSubject string
	CommitAuthor  string
	Files         int
	Hunks         int
	Changes       int
	Groups        int
	AnalyzerUsed  bool
	CreatedAt     time.Time
}

// Group is one persisted review group. Changes is populated by SaveRun
// input and by ListChanges, not by ListGroups.
type Group struct {
	ID         int64
	RunID      string
	Num        int
	Files      []string
	TotalLines int
	Changes    []*Change
}

// Change is one persisted change document.
type Change struct {
	ID         int64
	GroupID    int64
	RunID      string
	ChangeID   string // "FILE-<n>-CHANGE-<m>"
	File       string
	Symbol     string
	Header     string
	Diff       string
	TotalLines int
	Modifies   string
	Types      []string
	Callers    []string
	Calls      []string
	Definition string
}

// NewRunRecord converts an engine run into its storage rows. The run ID is
// assigned by SaveRun when left empty.
func NewRunRecord(run *engine.Run, repoDir string) (*Run, []*Group) {
	rec := &Run{
		RepoDir:      repoDir,
		Files:        run.Stats.Files,
		Hunks:        run.Stats.Hunks,
		Changes:      run.Stats.Changes,
		Groups:       run.Stats.Groups,
		AnalyzerUsed: run.Stats.AnalyzerUsed,
	}
	if run.Commit != nil {
		rec.CommitSHA = run.Commit.SHA
		rec.CommitSubject = run.Commit.Subject
		rec.CommitAuthor = run.Commit.Author
	}

	groups := make([]*Group, 0, len(run.Groups))
	for _, g := range run.Groups {
		group := &Group{
			Num:        g.Num,
			Files:      g.Files,
			TotalLines: g.TotalLines,
		}
		for _, c := range g.Changes {
			group.Changes = append(group.Changes, newChangeRecord(c))
		}
		groups = append(groups, group)
	}
	return rec, groups
}

func newChangeRecord(c *types.Change) *Change {
	rec := &Change{
		ChangeID:   c.ID(),
		File:       c.File,
		Symbol:     c.Symbol,
		Header:     c.Header,
		Diff:       c.Content,
		TotalLines: c.TotalLines,
		Definition: c.Definition,
	}
	if c.Info != nil {
		rec.Modifies = c.Info.Name
		rec.Types = c.Info.Types
		rec.Callers = c.Info.Callers
		rec.Calls = c.Info.Calls
	}
	return rec
}
