package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrConflict          = errors.New("conflict")
	ErrRenderPolicy      = errors.New("policy cannot be rendered")
	ErrPersistence       = errors.New("persistence failure")
	ErrKeySetUnavailable = errors.New("key set unavailable")
)
