package spantree

import "errors"

// Common errors used throughout the spantree packages
var (
	// ErrIntervalConflict is returned when a span partially overlaps an existing node.
	// Tree construction errors
	ErrIntervalConflict = errors.New("span partially overlaps an existing node")
	// ErrInvalidPosition indicates a span whose start lies after its end or before zero.
	ErrInvalidPosition = errors.New("invalid position")
	// ErrInvalidStructure indicates a low-level attach that would break a tree invariant.
	ErrInvalidStructure = errors.New("invalid tree structure")
	// ErrTreeBusy is returned when a tree is mutated while it is being traversed.
	ErrTreeBusy = errors.New("tree is being traversed")
	// ErrTreeFrozen is returned when a published tree is mutated.
	ErrTreeFrozen = errors.New("tree is frozen")

	// ErrMalformedStatement indicates statement text could not be reconstructed.
	// Chain navigation errors
	ErrMalformedStatement = errors.New("malformed statement")

	// ErrDeserialization indicates an external representation violates tree invariants.
	// Serialization errors
	ErrDeserialization = errors.New("invalid external representation")
	// ErrUnsupportedFormat indicates an unknown serialization format name.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrUnknownSchema indicates a label schema name that is not built in.
	// Label schema errors
	ErrUnknownSchema = errors.New("unknown label schema")
	// ErrInvalidSchema indicates a label schema document could not be used.
	ErrInvalidSchema = errors.New("invalid label schema")

	// ErrSyntax indicates the position source found syntax errors in its input.
	// Position source errors
	ErrSyntax = errors.New("source has syntax errors")

	// ErrInvalidFilter indicates a node filter expression could not be compiled.
	// Filter errors
	ErrInvalidFilter = errors.New("invalid filter expression")

	// ErrConfigValidation is returned when configuration validation fails.
	// Configuration errors
	ErrConfigValidation = errors.New("configuration validation failed")
)
