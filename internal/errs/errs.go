// Package errs defines the error taxonomy shared across every retrieval
// component. Callers distinguish kinds with errors.Is against the sentinel
// values; components wrap a sentinel with fmt.Errorf("...: %w", ..., sentinel) to add
// context without losing the kind.
package errs

import "errors"

var (
	// ErrValidation marks a malformed request: a bad argument, an out of
	// range page number, an empty reference phrase.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a well-formed request for something that doesn't
	// exist: an unknown reg_id, a page past the end of a regulation, an
	// annotation label with no match, a reference phrase that matches no
	// pattern or no target.
	ErrNotFound = errors.New("not found")

	// ErrIntegrity marks on-disk state that contradicts itself: a table
	// registry referencing a block id absent from its page, a page whose
	// declared page_num doesn't match its file name.
	ErrIntegrity = errors.New("integrity error")

	// ErrIndexMissing marks a query against an index that has not been
	// built (or was marked dirty and not yet rebuilt) for the scope
	// requested.
	ErrIndexMissing = errors.New("index missing")

	// ErrExternal marks a failure on the far side of a boundary this
	// module does not own: the embedder callable, a downstream transport.
	ErrExternal = errors.New("external failure")
)

// Is reports whether err is in the chain of target, delegating directly to
// errors.Is. Kept as a package-level helper so call sites read
// errs.Is(err, errs.ErrNotFound) next to the sentinels they test against.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
