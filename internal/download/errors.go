package download

import "errors"

var (
	// ErrRevoked is returned when an object URL was revoked or never created
	ErrRevoked = errors.New("object URL revoked")
	// ErrInvalidName is returned for download names that are empty or escape the output directory
	ErrInvalidName = errors.New("invalid file name")
)
