package baud

type BaudRate int

func (b BaudRate) Int() int {
	return int(b)
}

// Standard reports whether b is one of the fixed table speeds.
func (b BaudRate) Standard() bool {
	for _, v := range standardRates {
		if v == b {
			return true
		}
	}
	return false
}

const (
	Baud1200   BaudRate = 1200
	Baud2400   BaudRate = 2400
	Baud4800   BaudRate = 4800
	Baud9600   BaudRate = 9600
	Baud19200  BaudRate = 19200
	Baud38400  BaudRate = 38400
	Baud57600  BaudRate = 57600
	Baud115200 BaudRate = 115200
	Baud230400 BaudRate = 230400
	Baud460800 BaudRate = 460800
	Baud921600 BaudRate = 921600

	// StandardSpeed is the speed slot the kernel remaps to the custom divisor.
	// Requesting it restores standard speed mode.
	StandardSpeed = Baud38400
)

var standardRates = []BaudRate{
	Baud1200, Baud2400, Baud4800, Baud9600, Baud19200, Baud38400,
	Baud57600, Baud115200, Baud230400, Baud460800, Baud921600,
}

const (
	// tolerance window, in percent of the requested speed
	toleranceLow  = 98
	toleranceHigh = 102
)

// Divisor returns the custom divisor closest to baseRate/speed, rounding
// half up, and the speed that divisor actually achieves.
//
// speed must be at least 1. A base clock too slow to reach speed still
// yields a divisor of 1.
func Divisor(baseRate, speed int) (divisor, achieved int) {
	if speed < 1 {
		panic("baud: Divisor called with non-positive speed")
	}
	divisor = (baseRate + speed/2) / speed
	if divisor < 1 {
		divisor = 1
	}
	return divisor, baseRate / divisor
}

// ToleranceBounds returns the inclusive range of achieved speeds accepted
// for requested.
func ToleranceBounds(requested int) (lo, hi int) {
	return requested * toleranceLow / 100, requested * toleranceHigh / 100
}

// WithinTolerance reports whether achieved lies within ±2% of requested.
func WithinTolerance(requested, achieved int) bool {
	lo, hi := ToleranceBounds(requested)
	return achieved >= lo && achieved <= hi
}
