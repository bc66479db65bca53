package model

import "errors"

// ErrInvalidInput is returned when an optimization request is rejected
// before any computation starts.
var ErrInvalidInput = errors.New("invalid input")
