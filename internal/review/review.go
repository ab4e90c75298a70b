package review

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/diffscope/internal/engine"
	"github.com/dshills/diffscope/internal/gitcmd"
	"github.com/dshills/diffscope/internal/grouper"
	"github.com/dshills/diffscope/pkg/types"
)

// IndexVersion is the review-context format version written to index.json.
const IndexVersion = "2.0"

// Index is the index.json document: the table of contents the review
// tooling reads first.
type Index struct {
	Version       string       `json:"version"`
	Commit        IndexCommit  `json:"commit"`
	Files         []IndexGroup `json:"files"`
	FilesModified []string     `json:"files-modified"`
	TotalFiles    int          `json:"total-files"`
	TotalChanges  int          `json:"total-changes"`
}

// IndexCommit is the commit summary embedded in the index.
type IndexCommit struct {
	SHA     string `json:"sha"`
	Subject string `json:"subject"`
	Author  string `json:"author"`
}

// IndexGroup summarizes one review group. File holds a single path for
// single-file groups and the path list for merged groups; Files always
// holds the list.
type IndexGroup struct {
	FileNum    int           `json:"file_num"`
	File       interface{}   `json:"file"`
	Files      []string      `json:"files"`
	TotalLines int           `json:"total_lines"`
	Functions  []string      `json:"functions"`
	Changes    []IndexChange `json:"changes"`
}

// IndexChange is the per-change stub inside an index group.
type IndexChange struct {
	ID       string `json:"id"`
	Function string `json:"function"`
	File     string `json:"file"`
	Hunk     string `json:"hunk"`
}

// ChangeDoc is one FILE-N-CHANGE-M.json document.
type ChangeDoc struct {
	ID         string   `json:"id"`
	File       string   `json:"file"`
	Function   string   `json:"function"`
	HunkHeader string   `json:"hunk_header"`
	Diff       string   `json:"diff"`
	TotalLines int      `json:"total_lines"`
	Modifies   string   `json:"modifies,omitempty"`
	Types      []string `json:"types,omitempty"`
	Calls      []string `json:"calls,omitempty"`
	Callers    []string `json:"callers,omitempty"`
	Definition string   `json:"definition,omitempty"`
}

// commitDoc is commit-message.json: the parsed commit plus the changed
// files and their subsystems.
type commitDoc struct {
	*types.Commit
	FilesChanged []string `json:"files-changed"`
	Subsystems   []string `json:"subsystems"`
}

// Write populates a review-context directory from a run: the raw input
// text as change.diff, commit-message.json, index.json, and one JSON
// document per change. The directory is created when missing.
func Write(dir, raw string, run *engine.Run, changedFiles []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "change.diff"), []byte(raw), 0o644); err != nil {
		return fmt.Errorf("failed to write change.diff: %w", err)
	}

	commit := run.Commit
	if commit == nil {
		commit = &types.Commit{}
	}
	msg := commitDoc{
		Commit:       commit,
		FilesChanged: changedFiles,
		Subsystems:   gitcmd.Subsystems(changedFiles),
	}
	if err := writeJSON(filepath.Join(dir, "commit-message.json"), msg); err != nil {
		return err
	}

	for _, group := range run.Groups {
		for _, change := range group.Changes {
			doc := NewChangeDoc(change)
			if err := writeJSON(filepath.Join(dir, doc.ID+".json"), doc); err != nil {
				return err
			}
		}
	}

	return writeJSON(filepath.Join(dir, "index.json"), NewIndex(run, changedFiles))
}

// NewIndex builds the index.json document for a run.
func NewIndex(run *engine.Run, changedFiles []string) *Index {
	idx := &Index{
		Version:       IndexVersion,
		Files:         make([]IndexGroup, 0, len(run.Groups)),
		FilesModified: changedFiles,
		TotalFiles:    len(run.Groups),
	}
	if run.Commit != nil {
		idx.Commit = IndexCommit{
			SHA:     run.Commit.SHA,
			Subject: run.Commit.Subject,
			Author:  run.Commit.Author,
		}
	}

	for _, group := range run.Groups {
		entry := IndexGroup{
			FileNum:    group.Num,
			Files:      group.Files,
			TotalLines: group.TotalLines,
			Functions:  grouper.SortedGroupFunctions(group),
		}
		if len(group.Files) == 1 {
			entry.File = group.Files[0]
		} else {
			entry.File = group.Files
		}
		for _, change := range group.Changes {
			entry.Changes = append(entry.Changes, IndexChange{
				ID:       change.ID(),
				Function: change.Symbol,
				File:     change.File,
				Hunk:     change.Header,
			})
			idx.TotalChanges++
		}
		idx.Files = append(idx.Files, entry)
	}
	return idx
}

// NewChangeDoc renders one change as its JSON document.
func NewChangeDoc(change *types.Change) *ChangeDoc {
	doc := &ChangeDoc{
		ID:         change.ID(),
		File:       change.File,
		Function:   change.Symbol,
		HunkHeader: change.Header,
		Diff:       change.Content,
		TotalLines: change.TotalLines,
		Definition: change.Definition,
	}
	if info := change.Info; info != nil {
		doc.Modifies = info.Name
		doc.Types = info.Types
		doc.Calls = info.Calls
		doc.Callers = info.Callers
	}
	return doc
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
