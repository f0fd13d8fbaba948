package store

import "github.com/audioshelfapp/audioshelf-server/internal/errors"

// Sentinel errors for store operations. All carry domain error codes so
// handlers can map them to HTTP statuses via response.HandleError.
var (
	ErrBookNotFound     = errors.NotFound("book not found")
	ErrBookExists       = errors.Conflict("book already exists")
	ErrProgressNotFound = errors.NotFound("playback progress not found")
)
