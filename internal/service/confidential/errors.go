package confidential

import "errors"

var (
	ErrNotFound = errors.New("confidential note not found")
	ErrNoAuthor = errors.New("confidential note requires an authenticated author")
)
