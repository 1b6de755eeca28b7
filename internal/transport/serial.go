package transport

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"go.bug.st/serial"

	"github.com/san-kum/xosa/internal/motion"
)

type SerialOptions struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

func DefaultSerialOptions() SerialOptions {
	return SerialOptions{Port: "/dev/ttyUSB0", BaudRate: 115200}
}

// Mode converts the options into the go.bug.st/serial port mode, 8N1.
func (o SerialOptions) Mode() *serial.Mode {
	baud := o.BaudRate
	if baud <= 0 {
		baud = 115200
	}
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// SerialThrust writes one "L<left> R<right>" line per tick to an ESC bridge.
type SerialThrust struct {
	port io.WriteCloser
	buf  []byte
}

func OpenSerial(opts SerialOptions) (*SerialThrust, error) {
	p, err := serial.Open(opts.Port, opts.Mode())
	if err != nil {
		return nil, fmt.Errorf("transport: open serial %s: %w", opts.Port, err)
	}
	return NewSerialThrust(p), nil
}

func NewSerialThrust(port io.WriteCloser) *SerialThrust {
	return &SerialThrust{port: port, buf: make([]byte, 0, 32)}
}

func (s *SerialThrust) Publish(ctx context.Context, th motion.Thrust) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := append(s.buf[:0], 'L')
	b = strconv.AppendFloat(b, th.Left, 'f', 4, 64)
	b = append(b, " R"...)
	b = strconv.AppendFloat(b, th.Right, 'f', 4, 64)
	b = append(b, '\n')
	s.buf = b

	if _, err := s.port.Write(b); err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	return nil
}

func (s *SerialThrust) Close() error {
	return s.port.Close()
}
