package core

import "errors"

var (
	// ErrDataUnavailable is returned when the dataset snapshot is missing,
	// unreadable or corrupt. It is fatal at startup.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrMissingColumn is returned when a source lacks one of Columns.
	ErrMissingColumn = errors.New("dataset missing column")

	// ErrCorruptRow is returned when a source row cannot be decoded.
	ErrCorruptRow = errors.New("corrupt dataset row")

	// ErrUnknownSource is returned when no source is registered under a name.
	ErrUnknownSource = errors.New("unknown data source")

	// ErrInvalidSelection is returned for malformed selection parameters.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrUnknownView is returned when a view name is not recognised.
	ErrUnknownView = errors.New("unknown view")
)
