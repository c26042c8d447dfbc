package survey

import "errors"

var ErrNotFound = errors.New("survey response not found")
