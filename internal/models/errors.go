package models

import "errors"

var (
	ErrNotFound          = errors.New("content not found")
	ErrMissingFields     = errors.New("missing required fields")
	ErrContentTooLong    = errors.New("content too long")
	ErrSpamRejected      = errors.New("content matches spam heuristics")
	ErrRateLimited       = errors.New("posting again too soon")
	ErrBanned            = errors.New("identity has been banned")
	ErrEditWindowExpired = errors.New("edit window expired")
	ErrSelfReport        = errors.New("cannot report own content")
	ErrInvalidTargetType = errors.New("invalid report target type")
	ErrInvalidReason     = errors.New("invalid report reason")
	ErrUnknownAction     = errors.New("unknown intel action")
	ErrMetaMismatch      = errors.New("intel payload does not match its type")
	ErrDuplicate         = errors.New("duplicate record")
)
