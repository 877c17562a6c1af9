package model

import errors "github.com/Laisky/errors/v2"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")
