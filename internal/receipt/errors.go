package receipt

import "fmt"

// ParseError reports a lookup response that was malformed or incomplete.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parsing receipt: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parsing receipt: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LookupError reports that the external receipt lookup service was
// unreachable or returned a non-success response.
type LookupError struct {
	Err error
}

func (e *LookupError) Error() string { return fmt.Sprintf("receipt lookup: %v", e.Err) }

func (e *LookupError) Unwrap() error { return e.Err }

// PersistenceError reports a failed receipt write. The write is transactional,
// so nothing from the attempt is durable.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persisting receipt: %v", e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }
