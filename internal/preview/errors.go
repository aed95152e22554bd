package preview

import (
	"errors"
	"fmt"
)

var (
	// ErrFileTooLarge is wrapped in a ReadError when a file exceeds Reader.MaxBytes.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnsupportedFile is wrapped in a ReadError when the extension is not accepted.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrInflatedTooLarge is wrapped in a ParseError when a gzip payload
	// inflates past CSVParser.MaxInflated.
	ErrInflatedTooLarge = errors.New("decompressed payload too large")

	// ErrBadDataURL is wrapped in a ParseError when the payload is not a data URL.
	ErrBadDataURL = errors.New("malformed data url")

	// ErrMissingHandle is returned by NewOrchestrator when a UI handle is nil.
	ErrMissingHandle = errors.New("missing ui handle")
)

// ReadError reports that a selected file could not be read.
type ReadError struct {
	Name string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read error: %s: %v", e.Name, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ParseError reports that a payload is not valid tabular data.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
