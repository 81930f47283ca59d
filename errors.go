package baud

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSpeed        = errors.New("baud: invalid speed")
	ErrInvalidPortName     = errors.New("baud: invalid port name")
	ErrDeviceOpen          = errors.New("baud: cannot open device")
	ErrReadConfig          = errors.New("baud: cannot read serial configuration")
	ErrWriteConfig         = errors.New("baud: cannot write serial configuration")
	ErrUnsupportedPlatform = errors.New("baud: custom baud rates need TIOCGSERIAL, available on linux only")
	ErrSpeedNotSupported   = errors.New("baud: speed not achievable within tolerance")
)

// ToleranceError is returned when the closest achievable speed falls
// outside the tolerance window. It is an expected outcome, not an I/O failure.
type ToleranceError struct {
	Requested int
	Closest   int
}

func (e *ToleranceError) Error() string {
	return fmt.Sprintf("baud: cannot set speed %d, closest possible is %d", e.Requested, e.Closest)
}

func (e *ToleranceError) Unwrap() error {
	return ErrSpeedNotSupported
}
