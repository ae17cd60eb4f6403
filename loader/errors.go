package loader

import "errors"

// ErrEmptyInput is returned when a load produced zero chains, the
// "empty input" error kind of spec.md §7.
var ErrEmptyInput = errors.New("loader: no chains parsed from input")
