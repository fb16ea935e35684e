package domain

import "errors"

// ErrNotFound indicates the referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrForeignKey indicates a child row references a missing parent.
var ErrForeignKey = errors.New("foreign key violation")

// ErrInvalidPriority indicates a priority value outside low/medium/high.
var ErrInvalidPriority = errors.New("invalid priority")

// ErrInvalidCredentials indicates a failed username/password check.
var ErrInvalidCredentials = errors.New("invalid credentials")
