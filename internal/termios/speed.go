//go:build linux

package termios

import (
	"fmt"

	"golang.org/x/sys/unix"
)

var speeds = map[uint32]uint32{
	unix.B0:       0,
	unix.B50:      50,
	unix.B75:      75,
	unix.B110:     110,
	unix.B134:     134,
	unix.B150:     150,
	unix.B200:     200,
	unix.B300:     300,
	unix.B600:     600,
	unix.B1200:    1200,
	unix.B1800:    1800,
	unix.B2400:    2400,
	unix.B4800:    4800,
	unix.B9600:    9600,
	unix.B19200:   19200,
	unix.B38400:   38400,
	unix.B57600:   57600,
	unix.B115200:  115200,
	unix.B230400:  230400,
	unix.B460800:  460800,
	unix.B500000:  500000,
	unix.B576000:  576000,
	unix.B921600:  921600,
	unix.B1000000: 1000000,
	unix.B1152000: 1152000,
	unix.B1500000: 1500000,
	unix.B2000000: 2000000,
	unix.B2500000: 2500000,
	unix.B3000000: 3000000,
	unix.B3500000: 3500000,
	unix.B4000000: 4000000,
}

// DecodeSpeed returns the bits per second for a B* encoded speed.
func DecodeSpeed(encoded uint32) (uint32, error) {
	bps, ok := speeds[encoded]
	if !ok {
		return 0, fmt.Errorf("(termios-speed) %w: %#o", ErrUnknownSpeed, encoded)
	}

	return bps, nil
}

// EncodeSpeed returns the B* encoding of bps, if the table has one.
func EncodeSpeed(bps uint32) (uint32, bool) {
	for enc, v := range speeds {
		if v == bps {
			return enc, true
		}
	}

	return 0, false
}
