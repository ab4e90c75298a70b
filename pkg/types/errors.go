package types

import "errors"

// Domain errors shared across the engine, store, and MCP surface
var (
	// Validation errors
	ErrMissingFile      = errors.New("change file path is required")
	ErrEmptyContent     = errors.New("change content cannot be empty")
	ErrUnnumberedChange = errors.New("change has no group/sequence numbers")

	// Engine errors
	ErrInvalidDiff = errors.New("invalid or empty diff")
	ErrNoChanges   = errors.New("no file changes found in diff")

	// Store lookup errors
	ErrRunNotFound    = errors.New("run not found")
	ErrGroupNotFound  = errors.New("group not found")
	ErrChangeNotFound = errors.New("change not found")
)
