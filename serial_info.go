package baud

// Speed flags of struct serial_struct, see linux/serial.h.
const (
	FlagSpdHi   = 0x0010
	FlagSpdVHi  = 0x0020
	FlagSpdShi  = 0x1000
	FlagSpdCust = FlagSpdHi | FlagSpdVHi
	FlagSpdMask = FlagSpdHi | FlagSpdVHi | FlagSpdShi
)

type SpeedMode int

const (
	ModeStandard SpeedMode = iota
	ModeCustom
)

func (m SpeedMode) String() string {
	switch m {
	case ModeStandard:
		return "standard"
	case ModeCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// SerialInfo is the part of the kernel serial line configuration this
// package reads and changes. Devices keep the remaining fields so a write
// sends them back unchanged.
type SerialInfo struct {
	BaudBase      int
	CustomDivisor int
	Flags         int
}

// Mode reports whether the 38400 slot is remapped to the custom divisor.
func (s *SerialInfo) Mode() SpeedMode {
	if s.Flags&FlagSpdMask == FlagSpdCust {
		return ModeCustom
	}
	return ModeStandard
}

// Outcome describes a successful speed change.
type Outcome struct {
	Mode     SpeedMode
	BaudBase int
	Divisor  int
	Achieved int
}

// ApplySpeed moves info into the mode that gives speed. On error info is
// left untouched.
func ApplySpeed(info *SerialInfo, speed int) (Outcome, error) {
	if speed < 1 {
		return Outcome{}, ErrInvalidSpeed
	}

	if speed == StandardSpeed.Int() {
		info.Flags &^= FlagSpdMask
		return Outcome{Mode: ModeStandard, BaudBase: info.BaudBase}, nil
	}

	divisor, achieved := Divisor(info.BaudBase, speed)
	if !WithinTolerance(speed, achieved) {
		return Outcome{}, &ToleranceError{Requested: speed, Closest: achieved}
	}

	info.Flags = (info.Flags &^ FlagSpdMask) | FlagSpdCust
	info.CustomDivisor = divisor

	return Outcome{
		Mode:     ModeCustom,
		BaudBase: info.BaudBase,
		Divisor:  divisor,
		Achieved: achieved,
	}, nil
}
