package models

import "errors"

// Sentinel errors shared by every service. Handlers map these onto HTTP
// statuses at the request boundary; nothing below the boundary writes a
// response itself.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrUpstream   = errors.New("upstream catalog failure")
)
