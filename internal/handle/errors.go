package handle

import "errors"

// ErrExhausted is returned when no free suffix was found.
var ErrExhausted = errors.New("handle: no free suffix")
