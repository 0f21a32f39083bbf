package dataset

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat matches any UnsupportedFormatError via errors.Is.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// UnsupportedFormatError indicates a file name whose extension no parser accepts.
type UnsupportedFormatError struct {
	Name string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %q (expected .csv, .xls or .xlsx)", e.Name)
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

// LoadError wraps a parser failure on a recognized extension.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "load failed"
	}
	return fmt.Sprintf("load %s: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
