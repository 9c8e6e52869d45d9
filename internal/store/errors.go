package store

import "errors"

var (
	// ErrCorrupt is returned when persisted state cannot be decoded.
	ErrCorrupt = errors.New("store: corrupt state")

	// ErrUnsupportedVersion is returned when persisted state was written by a
	// newer schema.
	ErrUnsupportedVersion = errors.New("store: unsupported schema version")
)
