package htmltext

import (
	"errors"
	"fmt"
)

// ErrDestroyed is returned by operations on a destroyed Text.
var ErrDestroyed = errors.New("htmltext: text destroyed")

// RasterizeError reports that the vector document could not be serialized
// or decoded. Refresh logs it and leaves the node dirty instead of
// returning it.
type RasterizeError struct {
	Err error
}

func (e *RasterizeError) Error() string { return fmt.Sprintf("htmltext: 光栅化失败: %v", e.Err) }

func (e *RasterizeError) Unwrap() error { return e.Err }
