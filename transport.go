package baud

// deviceHandle abstracts the ioctl surface of an opened serial device.
type deviceHandle interface {
	GetSerialInfo() (*SerialInfo, error)
	SetSerialInfo(info *SerialInfo) error
	Close() error
}
