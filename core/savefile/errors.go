package savefile

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedSave matches every *MalformedSaveError.
	ErrMalformedSave = errors.New("malformed save")
	// ErrUnsupportedVersion matches every *UnsupportedVersionError.
	ErrUnsupportedVersion = errors.New("unsupported save format version")
)

// MalformedSaveError reports a required section that is missing or cannot be parsed.
type MalformedSaveError struct {
	// Section is the file (or "archive") that failed.
	Section string
	// Reason describes what is wrong with it.
	Reason string
	// Err is the underlying decode or validation error, if any.
	Err error
}

func (e *MalformedSaveError) Error() string {
	return fmt.Sprintf("malformed save: %s: %s", e.Section, e.Reason)
}

func (e *MalformedSaveError) Is(target error) bool {
	return target == ErrMalformedSave
}

func (e *MalformedSaveError) Unwrap() error {
	return e.Err
}

// UnsupportedVersionError reports a format marker outside the supported range.
type UnsupportedVersionError struct {
	Version int64
	Min     int64
	Max     int64
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported save format version %d (supported: %d-%d)", e.Version, e.Min, e.Max)
}

func (e *UnsupportedVersionError) Is(target error) bool {
	return target == ErrUnsupportedVersion
}

func malformed(section, reason string, err error) error {
	return &MalformedSaveError{Section: section, Reason: reason, Err: err}
}
