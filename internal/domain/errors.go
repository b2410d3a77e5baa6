package domain

import "errors"

// ErrNotFound indicates an identity lookup miss.
var ErrNotFound = errors.New("not found")
