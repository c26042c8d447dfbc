package appointment

import "errors"

var (
	ErrNotFound         = errors.New("appointment not found")
	ErrNoActor          = errors.New("appointment requires an authenticated doctor")
	ErrInvalidRange     = errors.New("appointment must end after it starts")
	ErrSlotNotAvailable = errors.New("doctor already has an appointment in this time slot")
)
