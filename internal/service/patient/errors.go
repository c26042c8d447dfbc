package patient

import "errors"

var ErrInvalidDOB = errors.New("date of birth is invalid")
