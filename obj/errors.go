package obj

import (
	"errors"
	"fmt"
)

// MissingFileError reports a descriptor that does not exist or cannot be read.
type MissingFileError struct {
	Path string
	Err  error
}

func (e *MissingFileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("SDK file %s not found: %s", e.Path, e.Err.Error())
	}
	return fmt.Sprintf("SDK file %s not found", e.Path)
}

func (e *MissingFileError) Unwrap() error {
	return e.Err
}

// MalformedDescriptorError reports a descriptor that exists but lacks the
// structure the resolver needs.
type MalformedDescriptorError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedDescriptorError) Error() string {
	msg := fmt.Sprintf("SDK file %s is malformed: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedDescriptorError) Unwrap() error {
	return e.Err
}

// HardwareMismatchError is returned when the state's hardware target does not
// end with the hardware identifier recorded in the options file.
type HardwareMismatchError struct {
	StateTarget string
	Hardware    string
	StatePath   string
	OptionsPath string
}

func (e *HardwareMismatchError) Error() string {
	return fmt.Sprintf("SDK state %s doesn't match hardware target: hw_target %q, options %s hardware %q",
		e.StatePath, e.StateTarget, e.OptionsPath, e.Hardware)
}

func IsMissingFile(err error) bool {
	var target *MissingFileError
	return errors.As(err, &target)
}

func IsMalformed(err error) bool {
	var target *MalformedDescriptorError
	return errors.As(err, &target)
}

func IsHardwareMismatch(err error) bool {
	var target *HardwareMismatchError
	return errors.As(err, &target)
}
