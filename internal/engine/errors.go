package engine

import "errors"

var (
	ErrPoolNotFound   = errors.New("pool not found")
	ErrInvalidPoolID  = errors.New("pool id is required")
	ErrMissingStorage = errors.New("snapshot store and journal are required")
)
