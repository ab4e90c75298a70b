package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dshills/diffscope/pkg/types"
)

// Options selects how diff symbol information is produced.
type Options struct {
	// Command is the external analyzer binary, "semcode" by default.
	Command string

	// Disabled forces the heuristic fallback even when the external
	// analyzer is available.
	Disabled bool

	// Verbose logs fallback decisions to the standard logger.
	Verbose bool
}

// Result is a resolved symbol table plus the provenance callers need:
// definition extraction from the working tree only kicks in when the
// external analyzer did not run.
type Result struct {
	Table    *types.SymbolTable
	External bool
}

func (o Options) command() string {
	if o.Command == "" {
		return "semcode"
	}
	return o.Command
}

// indexFile is the analyzer's on-disk index; without it the external tool
// has nothing to answer from.
func (o Options) indexFile() string {
	return "." + filepath.Base(o.command()) + ".db"
}

// Available reports whether the external analyzer can serve the given repo:
// its index database exists there and the binary answers a --help probe.
func Available(ctx context.Context, dir string, opts Options) bool {
	if opts.Disabled {
		return false
	}
	if _, err := os.Stat(filepath.Join(dir, opts.indexFile())); err != nil {
		return false
	}
	cmd := exec.CommandContext(ctx, opts.command(), "--help")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// Resolve produces the symbol table for a diff: the external analyzer when
// enabled and available, the built-in heuristic otherwise. Any external
// failure (spawn, exit status, malformed JSON) falls back to the heuristic;
// Resolve never returns an error.
func Resolve(ctx context.Context, dir, diffText string, opts Options) Result {
	if Available(ctx, dir, opts) {
		table, err := External(ctx, dir, diffText, opts)
		if err == nil {
			return Result{Table: table, External: true}
		}
		if opts.Verbose {
			log.Printf("analyzer %s failed, using heuristic fallback: %v", opts.command(), err)
		}
	}
	return Result{Table: Heuristic(diffText)}
}

// diffInfoDoc is the external analyzer's JSON output shape.
type diffInfoDoc struct {
	ModifiedFunctions []struct {
		Name    string   `json:"name"`
		Types   []string `json:"types"`
		Callers []string `json:"callers"`
		Calls   []string `json:"calls"`
	} `json:"modified_functions"`
	ModifiedTypes  []string `json:"modified_types"`
	ModifiedMacros []string `json:"modified_macros"`
}

// External pipes the diff to `<command> diffinfo --json -` and decodes the
// result into a symbol table.
func External(ctx context.Context, dir, diffText string, opts Options) (*types.SymbolTable, error) {
	cmd := exec.CommandContext(ctx, opts.command(), "diffinfo", "--json", "-")
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(diffText)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to run %s diffinfo: %s: %w",
			opts.command(), strings.TrimSpace(stderr.String()), err)
	}

	var doc diffInfoDoc
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s output: %w", opts.command(), err)
	}

	table := types.NewSymbolTable()
	for _, fn := range doc.ModifiedFunctions {
		table.Add(&types.SymbolInfo{
			Name:    fn.Name,
			Types:   fn.Types,
			Callers: fn.Callers,
			Calls:   fn.Calls,
		})
	}
	for _, name := range doc.ModifiedTypes {
		table.AddType(name)
	}
	for _, name := range doc.ModifiedMacros {
		table.AddMacro(name)
	}
	return table, nil
}
