package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicate     = errors.New("duplicate record")
	ErrNotRevocable  = errors.New("award cannot be revoked")
	ErrInvalidRecord = errors.New("invalid record")
)
