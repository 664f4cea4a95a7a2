package domain

import "errors"

var (
	// ErrRateLimited marks a transient completion failure worth retrying.
	ErrRateLimited = errors.New("completion rate limited")
	// ErrService marks a non-transient completion failure.
	ErrService = errors.New("completion service error")
	// ErrParseFailure means the completion held no usable content.
	ErrParseFailure = errors.New("completion response unusable")

	ErrDuplicate     = errors.New("record already exists")
	ErrStoreFailure  = errors.New("record store failure")
	ErrNotFound      = errors.New("record not found")
	ErrInvalidStatus = errors.New("invalid status")
	ErrRunInProgress = errors.New("pipeline run already in progress")
)
