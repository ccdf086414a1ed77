package version

import "errors"

// ErrBadlyFormed is returned when a version string cannot be parsed, or
// parses to a numeric shape that doesn't fit the pre-10/post-10 split.
var ErrBadlyFormed = errors.New("version: badly formed")
