package models

import "errors"

// Domain error sentinels shared across services and handlers.
var (
	// ErrDuplicateName is returned when a project with the same name
	// already exists. Project names are unique and immutable.
	ErrDuplicateName = errors.New("a project with this name already exists")

	// ErrInvalidCredentials is returned on a failed admin login. The
	// message deliberately does not say which part was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrRowNotFound is returned when the mirror cannot locate a
	// project's row on the spreadsheet.
	ErrRowNotFound = errors.New("mirror row not found")

	// ErrMirrorUnavailable wraps transport, auth or API failures from
	// the spreadsheet mirror. The local store is never affected.
	ErrMirrorUnavailable = errors.New("mirror unavailable")
)
