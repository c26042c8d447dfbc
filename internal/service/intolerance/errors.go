package intolerance

import "errors"

var (
	ErrNotFound    = errors.New("drug intolerance not found")
	ErrUnknownDrug = errors.New("drug does not exist")
)
