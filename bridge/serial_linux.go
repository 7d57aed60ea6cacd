//go:build linux

package bridge

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// baudRates maps a requested bit rate to the termios speed constant
// Linux understands. Anything not listed here is rejected rather than
// silently rounded to the nearest supported rate.
var baudRates = map[int]uint32{
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	921600:  unix.B921600,
	1000000: unix.B1000000,
}

// serialPort wraps an open tty file descriptor as an io.ReadWriteCloser.
type serialPort struct {
	f *os.File
}

func (p *serialPort) Read(b []byte) (int, error)  { return p.f.Read(b) }
func (p *serialPort) Write(b []byte) (int, error)  { return p.f.Write(b) }
func (p *serialPort) Close() error                 { return p.f.Close() }

// OpenSerialPort opens path and configures it for raw, 8N1 binary
// transfer at baud: no line editing, no signal characters, no byte
// translation, one-to-one read of whatever bytes the bridge sends.
// Modeled on the ioctl-level raw-mode technique used by third-party
// Linux serial libraries, reproduced here directly against
// golang.org/x/sys/unix rather than importing one.
func OpenSerialPort(path string, baud int) (*serialPort, error) {
	rate, ok := baudRates[baud]
	if !ok {
		return nil, fmt.Errorf("bridge: unsupported baud rate %d", baud)
	}

	f, err := os.OpenFile(path, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, &BridgeError{Kind: BridgeTransportFailure, Err: err}
	}

	fd := int(f.Fd())
	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		f.Close()
		return nil, &BridgeError{Kind: BridgeTransportFailure, Err: err}
	}

	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8 | unix.CLOCAL | unix.CREAD
	t.Cflag &^= unix.CBAUD
	t.Cflag |= rate
	t.Ispeed = rate
	t.Ospeed = rate

	// Blocking reads of at least one byte, no inter-byte timeout: the
	// bridge's framing is self-delimiting (fixed command/response sizes).
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		f.Close()
		return nil, &BridgeError{Kind: BridgeTransportFailure, Err: err}
	}

	return &serialPort{f: f}, nil
}
