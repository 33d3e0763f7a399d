package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrIndexNotLoaded indicates no vector index is loaded.
	// Queries cannot run until documents have been indexed.
	ErrIndexNotLoaded = errors.New("index not loaded")

	// ErrDimensionMismatch indicates a vector's length does not match
	// the dimension the index was created with.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrLengthMismatch indicates texts, vectors and sources were passed
	// with differing counts.
	ErrLengthMismatch = errors.New("texts, vectors and sources length mismatch")

	// ErrUpstream indicates a network, timeout or HTTP-level failure
	// from the embedding or completion service.
	ErrUpstream = errors.New("upstream call failed")

	// ErrMalformedResponse indicates the remote service returned a shape
	// the client does not recognise (e.g. a missing expected field).
	ErrMalformedResponse = errors.New("malformed upstream response")

	// ErrConfigMissing indicates required credentials or identifiers are
	// absent at startup. Fatal - the process must not start without them.
	ErrConfigMissing = errors.New("required configuration missing")

	// ErrNotImplemented indicates a capability that is not available.
	// Callers can branch on this instead of parsing a canned answer.
	ErrNotImplemented = errors.New("not implemented")
)
