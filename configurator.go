package baud

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Configurator applies custom baud rates to serial devices.
// The zero value is usable and logs nothing.
type Configurator struct {
	Logger zerolog.Logger
}

// NewConfigurator returns a Configurator that logs to logger.
func NewConfigurator(logger zerolog.Logger) *Configurator {
	return &Configurator{Logger: logger}
}

// SetCustomBaudRate remaps the 38400 slot of device to the divisor closest
// to speed, or restores standard speed mode when speed is 38400.
//
// Invalid speeds are rejected before the device is opened. The
// configuration is written back only when the speed change succeeds, and the
// device is closed on every path once opened.
func (c *Configurator) SetCustomBaudRate(ctx context.Context, device string, speed int) (out Outcome, err error) {
	if err = ValidateSpeed(speed); err != nil {
		return Outcome{}, err
	}
	if err = validatePortName(device); err != nil {
		return Outcome{}, err
	}
	if err = ctx.Err(); err != nil {
		return Outcome{}, err
	}

	c.checkPortListed(device)

	h, err := openDevice(device)
	if err != nil {
		if errors.Is(err, ErrUnsupportedPlatform) {
			return Outcome{}, err
		}
		return Outcome{}, fmt.Errorf("%w %s: %w", ErrDeviceOpen, device, err)
	}
	defer func() {
		if e := h.Close(); e != nil {
			err = errors.Join(err, fmt.Errorf("closing %s: %w", device, e))
		}
	}()

	info, err := h.GetSerialInfo()
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrReadConfig, err)
	}

	c.Logger.Debug().
		Str("device", device).
		Int("baud_base", info.BaudBase).
		Int("custom_divisor", info.CustomDivisor).
		Stringer("mode", info.Mode()).
		Msg("current serial configuration")

	out, err = ApplySpeed(info, speed)
	if err != nil {
		var tolErr *ToleranceError
		if errors.As(err, &tolErr) {
			c.Logger.Warn().
				Int("requested", tolErr.Requested).
				Int("closest", tolErr.Closest).
				Int("baud_base", info.BaudBase).
				Msg("speed outside tolerance, configuration left unchanged")
		}
		return Outcome{}, err
	}

	if err = h.SetSerialInfo(info); err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrWriteConfig, err)
	}

	c.Logger.Info().
		Str("device", device).
		Stringer("mode", out.Mode).
		Int("divisor", out.Divisor).
		Int("achieved", out.Achieved).
		Bool("table_rate", BaudRate(speed).Standard()).
		Msg("serial configuration written")

	return out, nil
}

func (c *Configurator) checkPortListed(device string) {
	if !isValidPortPattern(device) {
		c.Logger.Warn().Str("device", device).Msg("device name does not look like a serial port")
	}
	ok, err := isPortListed(device)
	if err != nil {
		c.Logger.Debug().Err(err).Msg("listing serial ports")
		return
	}
	if !ok {
		c.Logger.Warn().Str("device", device).Msg("device not found in serial port list")
	}
}
