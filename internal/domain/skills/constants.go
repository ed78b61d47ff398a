package skills

import "errors"

const (
	MinLevel = 0.0
	MaxLevel = 5.0
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
