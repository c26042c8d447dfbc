package allergy

import "errors"

var (
	ErrNotFound        = errors.New("allergy not found")
	ErrUnknownAllergen = errors.New("allergen does not exist")
)
