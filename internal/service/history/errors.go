package history

import "errors"

var (
	ErrNotFound    = errors.New("history note not found")
	ErrUnknownKind = errors.New("unknown history kind")
)
