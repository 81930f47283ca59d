//go:build !linux

package baud

func openSerialDevice(name string) (deviceHandle, error) {
	return nil, ErrUnsupportedPlatform
}
