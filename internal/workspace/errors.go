package workspace

import "errors"

var (
	ErrSentinelTab = errors.New("sentinel tabs can not be closed")
	ErrTabNotOpen  = errors.New("tab is not open")
	ErrInvalidTab  = errors.New("invalid tab id")
)
