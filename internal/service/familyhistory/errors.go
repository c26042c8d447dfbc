package familyhistory

import "errors"

var (
	ErrNotFound        = errors.New("family history entry not found")
	ErrUnknownRelative = errors.New("unknown relative")
)
