package document

import "errors"

var (
	// ErrSectionNotFound indicates the title is not part of the document.
	ErrSectionNotFound = errors.New("section not found")

	// ErrSectionLocked indicates a manual edit hit a section with a
	// generation task in flight.
	ErrSectionLocked = errors.New("section locked by running generation")

	// ErrAlreadyGenerating indicates a second generation was admitted for a
	// section that already has one in flight.
	ErrAlreadyGenerating = errors.New("section already generating")

	// ErrNotGeneratable indicates the section does not support automatic
	// generation.
	ErrNotGeneratable = errors.New("section not generatable")

	// ErrEmptySection indicates a confirm on a section with no content.
	ErrEmptySection = errors.New("section has no content")

	// ErrInvalidTemplate indicates a document template failed validation.
	ErrInvalidTemplate = errors.New("invalid document template")
)
