// Package service holds the operations that span more than one repository
// or touch something besides the database: roster replacement with its
// broker notification, the image lifecycle and credential checks.
package service

// ValidationError is a request problem the client can fix. Msg is safe to
// return verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }
