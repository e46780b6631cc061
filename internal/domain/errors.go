package domain

import "errors"

// ErrInvalidInput marks malformed caller input. It is the only error class
// the availability engine and route optimizer surface on their own.
var ErrInvalidInput = errors.New("invalid input")
