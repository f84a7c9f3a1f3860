// Package errs defines the sentinel errors shared across the generation and
// scoring pipeline. Services wrap these with fmt.Errorf("...: %w", ...) so that
// controllers can map them to HTTP statuses with errors.Is.
package errs

import "errors"

var (
	// ErrFetch indicates a remote document was unreachable or answered non-2xx.
	ErrFetch = errors.New("fetch failed")

	// ErrEmptyContent indicates extraction yielded nothing usable.
	ErrEmptyContent = errors.New("extracted content is empty")

	// ErrSearchUnavailable indicates no search provider is configured.
	// Distinct from a search that ran and returned zero results.
	ErrSearchUnavailable = errors.New("search provider not configured")

	// ErrSearchFailed indicates the search provider call itself failed.
	ErrSearchFailed = errors.New("search request failed")

	// ErrMalformedGeneration indicates the completion reply could not be parsed
	// into the required JSON shape.
	ErrMalformedGeneration = errors.New("completion reply is not parseable as question JSON")

	// ErrValidation indicates a parsed question violated the Question invariants.
	ErrValidation = errors.New("generated question failed validation")

	// ErrNotFound indicates an unknown test or session id.
	ErrNotFound = errors.New("not found")

	// ErrTimeout indicates a transport-level timeout, kept distinct from other
	// transport failures.
	ErrTimeout = errors.New("request timed out")
)
