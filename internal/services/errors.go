// internal/services/errors.go
package services

import "errors"

var (
	// ErrNotFound marks lookups that should surface as a 404.
	ErrNotFound = errors.New("record not found")

	// ErrNoOpenApplication is returned when a submission event arrives for
	// a prospect with no unsubmitted application to attach it to.
	ErrNoOpenApplication = errors.New("no open application found for submission")
)
