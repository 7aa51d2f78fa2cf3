package services

import (
	"errors"
	"fmt"
)

// DataLoadError reports a reference table that could not be built.
type DataLoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DataLoadError) Error() string {
	msg := fmt.Sprintf("load nutrition data %q: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// ErrDetection wraps every failure of the detector collaborator.
var ErrDetection = errors.New("detection failed")

var ErrInvalidPortion = errors.New("portion must be a non-negative number of grams")
