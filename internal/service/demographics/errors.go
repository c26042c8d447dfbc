package demographics

import "errors"

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrUnknownField    = errors.New("field is not an editable demographic")
)
