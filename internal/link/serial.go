// ABOUTME: Serial port link
// ABOUTME: Opens a UART at the bridge's fixed line settings
package link

import (
	"fmt"
	"log"

	"go.bug.st/serial"
)

// DefaultBaudRate is the bridge firmware's UART speed
const DefaultBaudRate = 1000000

// SerialMode returns the 8N1 line settings for baud
func SerialMode(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenSerial opens path and starts reading it
func OpenSerial(path string, baud int) (*Conn, error) {
	if path == "" {
		return nil, fmt.Errorf("serial port path is required")
	}
	if baud <= 0 {
		return nil, fmt.Errorf("invalid baud rate: %d", baud)
	}

	port, err := serial.Open(path, SerialMode(baud))
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}

	log.Printf("Serial port %s opened at %d baud", path, baud)
	return Wrap(port, path), nil
}

// Ports lists serial ports present on the system
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}
