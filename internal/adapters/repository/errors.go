package repository

import "errors"

// ErrInvalidSeed is returned when the seed table has an unusable entry.
var ErrInvalidSeed = errors.New("invalid activity seed")
