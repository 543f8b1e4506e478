package storage

import "errors"

// ErrEmptyKey is returned by every backend when called with an empty key.
var ErrEmptyKey = errors.New("empty storage key")
