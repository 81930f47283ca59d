package baud

import (
	"fmt"
	"strings"

	gobug "go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// allow tests to override external dependencies
var (
	openDevice       = openSerialDevice
	getPortsList     = gobug.GetPortsList
	getDetailedPorts = enumerator.GetDetailedPortsList
)

// PortDetail describes a serial port found by the OS enumerator.
type PortDetail struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

func AvailablePorts() ([]string, error) {
	ports, err := getPortsList()
	if err != nil {
		return nil, err
	}
	return ports, nil
}

// DetailedPorts lists the serial ports with their USB metadata where known.
func DetailedPorts() ([]PortDetail, error) {
	list, err := getDetailedPorts()
	if err != nil {
		return nil, err
	}
	details := make([]PortDetail, 0, len(list))
	for _, p := range list {
		if p == nil {
			continue
		}
		details = append(details, PortDetail{
			Name:         p.Name,
			IsUSB:        p.IsUSB,
			VID:          p.VID,
			PID:          p.PID,
			SerialNumber: p.SerialNumber,
			Product:      p.Product,
		})
	}
	return details, nil
}

func validatePortName(portName string) error {
	if portName == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPortName)
	}
	// Prevent path traversal
	if strings.Contains(portName, "..") {
		return fmt.Errorf("%w: contains path traversal", ErrInvalidPortName)
	}
	return nil
}

// isPortListed reports whether the OS enumerator knows portName. Devices
// such as pseudo terminals are not always listed, so callers only warn.
func isPortListed(portName string) (bool, error) {
	ports, err := AvailablePorts()
	if err != nil {
		return false, err
	}
	for _, port := range ports {
		if port == portName {
			return true, nil
		}
	}
	return false, nil
}

func isValidPortPattern(portName string) bool {
	// Unix/Linux: /dev/tty* or /dev/cu* (macOS)
	if strings.HasPrefix(portName, "/dev/tty") || strings.HasPrefix(portName, "/dev/cu") {
		return true
	}
	return false
}
