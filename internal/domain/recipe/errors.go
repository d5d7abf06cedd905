package recipe

import "errors"

// Domain errors for recipe operations

var (
	// Catalog construction errors
	ErrEmptyIngredientKey  = errors.New("ingredient key must not be empty")
	ErrDuplicateIngredient = errors.New("ingredient already exists in catalog")

	// Record store errors
	ErrEntryNotFound = errors.New("recipe not found")
	ErrCorruptRecord = errors.New("recipe store contains a malformed record")
	ErrInvalidCounts = errors.New("ingredient counts are not a valid JSON object")
	ErrEmptyFilename = errors.New("recipe filename must not be empty")
)
