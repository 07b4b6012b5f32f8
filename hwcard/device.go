package hwcard

import (
	"errors"

	"go.bug.st/serial/enumerator"
)

// ErrNoDeviceFound is returned by Detect when no matching USB serial
// device is present.
var ErrNoDeviceFound = errors.New("hwcard: no device found among serial ports")

// serialNumber is the USB serial number our reference adapter reports,
// analogous to the teacher's fxpakpro "DEMO00000000" sentinel.
const serialNumber = "WONDERCARD00000"

// Detect scans the system's serial ports for a USB device reporting
// our adapter's serial number and returns its port name.
func Detect() (portName string, err error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", err
	}

	for _, port := range ports {
		if !port.IsUSB {
			continue
		}
		if port.SerialNumber == serialNumber {
			return port.Name, nil
		}
	}

	return "", ErrNoDeviceFound
}
