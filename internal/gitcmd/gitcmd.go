package gitcmd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dshills/diffscope/pkg/types"
)

// Show returns `git show --format=full <ref>` output: the commit message
// followed by the patch.
func Show(ctx context.Context, dir, ref string) (string, error) {
	return run(ctx, dir, "show", "--format=full", ref)
}

// ChangedFiles returns the paths a commit touches, in git's order.
func ChangedFiles(ctx context.Context, dir, ref string) ([]string, error) {
	out, err := run(ctx, dir, "diff-tree", "--no-commit-id", "--name-only", "-r", ref)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s failed: %s: %w", strings.Join(args, " "),
			strings.TrimSpace(stderr.String()), err)
	}
	return stdout.String(), nil
}

// ParseCommit extracts commit metadata from git show output. The first
// non-blank body line is the subject; trailer tags accumulate in order
// except Fixes, where a later occurrence overwrites an earlier one. Blank
// body lines are dropped from the stored body.
func ParseCommit(showOutput string) *types.Commit {
	commit := &types.Commit{}
	var (
		bodyLines   []string
		pastSubject bool
	)

	for _, line := range strings.Split(showOutput, "\n") {
		switch {
		case strings.HasPrefix(line, "commit "):
			fields := strings.Fields(line)
			if len(fields) > 1 {
				commit.SHA = fields[1]
			}
		case strings.HasPrefix(line, "Author: "):
			commit.Author = strings.TrimSpace(line[len("Author: "):])
		case strings.HasPrefix(line, "Date: "):
			commit.Date = strings.TrimSpace(line[len("Date: "):])
		case strings.HasPrefix(line, "diff --git"):
			commit.Body = strings.Join(bodyLines, "\n")
			return commit
		case strings.HasPrefix(line, "    "):
			content := line[4:]
			if !pastSubject {
				commit.Subject = content
				pastSubject = true
				continue
			}
			if content == "" {
				continue
			}
			bodyLines = append(bodyLines, content)
			parseTag(&commit.Tags, content)
		}
	}

	commit.Body = strings.Join(bodyLines, "\n")
	return commit
}

func parseTag(tags *types.CommitTags, line string) {
	switch {
	case strings.HasPrefix(line, "Fixes: "):
		tags.Fixes = strings.TrimSpace(line[len("Fixes: "):])
	case strings.HasPrefix(line, "Cc: "):
		tags.Cc = append(tags.Cc, strings.TrimSpace(line[len("Cc: "):]))
	case strings.HasPrefix(line, "Signed-off-by: "):
		tags.SignedOff = append(tags.SignedOff, strings.TrimSpace(line[len("Signed-off-by: "):]))
	case strings.HasPrefix(line, "Reviewed-by: "):
		tags.ReviewedBy = append(tags.ReviewedBy, strings.TrimSpace(line[len("Reviewed-by: "):]))
	case strings.HasPrefix(line, "Acked-by: "):
		tags.AckedBy = append(tags.AckedBy, strings.TrimSpace(line[len("Acked-by: "):]))
	case strings.HasPrefix(line, "Tested-by: "):
		tags.TestedBy = append(tags.TestedBy, strings.TrimSpace(line[len("Tested-by: "):]))
	case strings.HasPrefix(line, "Link: "):
		tags.Links = append(tags.Links, strings.TrimSpace(line[len("Link: "):]))
	}
}

// DiffStart returns the byte offset of the first "diff --git " line, or -1
// when the output contains no diff, so message and patch can be split.
func DiffStart(showOutput string) int {
	if strings.HasPrefix(showOutput, "diff --git ") {
		return 0
	}
	idx := strings.Index(showOutput, "\ndiff --git ")
	if idx < 0 {
		return -1
	}
	return idx + 1
}

// Subsystems tags changed paths with their kernel subsystem, first-seen
// order, de-duplicated.
func Subsystems(paths []string) []string {
	var (
		subsystems []string
		seen       = make(map[string]struct{})
	)
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		subsystems = append(subsystems, name)
	}

	for _, path := range paths {
		switch {
		case strings.HasPrefix(path, "net/") || strings.HasPrefix(path, "drivers/net/"):
			add("networking")
		case strings.HasPrefix(path, "mm/"):
			add("mm")
		case strings.HasPrefix(path, "fs/btrfs/"):
			add("btrfs")
		case strings.HasPrefix(path, "fs/"):
			add("vfs")
		case strings.HasPrefix(path, "kernel/sched/"):
			add("scheduler")
		case strings.HasPrefix(path, "kernel/bpf/"):
			add("bpf")
		case strings.HasPrefix(path, "block/") || strings.HasPrefix(path, "drivers/nvme/"):
			add("block")
		}
	}
	return subsystems
}
