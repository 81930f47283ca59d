//go:build linux

package baud

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	ioctlGetSerial = unix.TIOCGSERIAL
	ioctlSetSerial = unix.TIOCSSERIAL
)

// serialStruct mirrors struct serial_struct from linux/serial.h.
type serialStruct struct {
	Type          int32
	Line          int32
	Port          uint32
	IRQ           int32
	Flags         int32
	XmitFifoSize  int32
	CustomDivisor int32
	BaudBase      int32
	CloseDelay    uint16
	IOType        uint8
	ReservedChar  [1]uint8
	Hub6          int32
	ClosingWait   uint16
	ClosingWait2  uint16
	IOMemBase     uintptr
	IOMemRegShift uint16
	PortHigh      uint32
	IOMapBase     uintptr
}

type linuxDevice struct {
	fd   int
	last serialStruct
}

func openSerialDevice(name string) (deviceHandle, error) {
	fd, err := unix.Open(name, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	return &linuxDevice{fd: fd}, nil
}

func (d *linuxDevice) GetSerialInfo() (*SerialInfo, error) {
	if err := ioctlSerial(d.fd, ioctlGetSerial, &d.last); err != nil {
		return nil, fmt.Errorf("TIOCGSERIAL: %w", err)
	}
	return &SerialInfo{
		BaudBase:      int(d.last.BaudBase),
		CustomDivisor: int(d.last.CustomDivisor),
		Flags:         int(d.last.Flags),
	}, nil
}

// SetSerialInfo writes info back on top of the fields last read, so
// everything this package does not manage round-trips unchanged.
func (d *linuxDevice) SetSerialInfo(info *SerialInfo) error {
	ss := d.last
	ss.BaudBase = int32(info.BaudBase)
	ss.CustomDivisor = int32(info.CustomDivisor)
	ss.Flags = int32(info.Flags)
	if err := ioctlSerial(d.fd, ioctlSetSerial, &ss); err != nil {
		return fmt.Errorf("TIOCSSERIAL: %w", err)
	}
	d.last = ss
	return nil
}

func (d *linuxDevice) Close() error {
	return unix.Close(d.fd)
}

func ioctlSerial(fd int, req uint, ss *serialStruct) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(unsafe.Pointer(ss)))
	if errno != 0 {
		return errno
	}
	return nil
}
