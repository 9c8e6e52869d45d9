package slots

import "errors"

// ErrInvalidTime is returned for a slot time that is not HH:MM.
var ErrInvalidTime = errors.New("slots: invalid time")
