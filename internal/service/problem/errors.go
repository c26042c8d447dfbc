package problem

import "errors"

var (
	ErrNotFound    = errors.New("problem not found")
	ErrUnknownCode = errors.New("ICD-10 code does not exist")
)
