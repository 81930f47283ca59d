package baud

import (
	"fmt"
	"strconv"
)

// ValidateSpeed rejects speeds the divisor calculation cannot handle.
func ValidateSpeed(speed int) error {
	if speed < 1 {
		return fmt.Errorf("%w: %d, must be at least 1", ErrInvalidSpeed, speed)
	}
	return nil
}

// ParseSpeed parses a decimal speed argument. The whole string must be a
// number; "9600x" is rejected rather than read as 9600.
func ParseSpeed(s string) (int, error) {
	speed, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidSpeed, s)
	}
	if err = ValidateSpeed(speed); err != nil {
		return 0, err
	}
	return speed, nil
}
