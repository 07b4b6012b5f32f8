// Package hwcard bridges the slot.Peripheral contract to a real
// serial-attached memory card adapter, the way the teacher's
// snes/fxpakpro package bridges SNES bus commands to a real FX Pak Pro
// over USB-serial.
//
// Wire framing. Each Send exchanges a fixed 3-byte request for a fixed
// 3-byte response with the adapter:
//
//	request:  [present, command, 0x00]
//	response: [ack, present, data]
//
// present in the request is 1 to power the card on, 0 to power it
// off; command is the command byte being sent, or 0xFF for a high-Z
// (don't-care) command. present in the response mirrors whether the
// adapter's card is currently powered. ack and data are 0/1 and the
// response data byte respectively; when the card is unpowered the
// adapter always answers with ack=0, data=0.
package hwcard

import (
	"errors"
	"fmt"

	"go.bug.st/serial"

	"github.com/saxbophone/wondercard/protocol"
)

var baudRates = []int{
	921600,
	460800,
	230400,
	115200,
	57600,
	38400,
	19200,
	9600,
}

const (
	reqHighZ    = 0xFF
	requestSize = 3
	replySize   = 3
)

// Bridge is a slot.Peripheral backed by a real memory card adapter
// attached over a serial port.
type Bridge struct {
	port    serial.Port
	powered bool
}

// Open opens portName at the highest baud rate the adapter accepts, up
// to baudRequest, mirroring the teacher's descending baud-rate probe.
func Open(portName string, baudRequest int) (*Bridge, error) {
	var (
		port serial.Port
		err  error
	)
	for _, baud := range baudRates {
		if baud > baudRequest {
			continue
		}
		port, err = serial.Open(portName, &serial.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		})
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("hwcard: failed to open %s at any baud rate: %w", portName, err)
	}
	if err = port.SetDTR(true); err != nil {
		port.Close()
		return nil, fmt.Errorf("hwcard: failed to set DTR: %w", err)
	}
	return &Bridge{port: port}, nil
}

// Close releases the underlying serial port.
func (b *Bridge) Close() error {
	b.port.SetDTR(false)
	return b.port.Close()
}

func writeFull(port serial.Port, buf []byte) error {
	sent := 0
	for sent < len(buf) {
		n, err := port.Write(buf[sent:])
		if err != nil {
			return err
		}
		sent += n
	}
	return nil
}

func readFull(port serial.Port, buf []byte) error {
	got := 0
	for got < len(buf) {
		n, err := port.Read(buf[got:])
		if err != nil {
			return err
		}
		if n <= 0 {
			return errors.New("hwcard: readFull: Read returned 0")
		}
		got += n
	}
	return nil
}

func (b *Bridge) roundTrip(present, command byte) (ack bool, cardPresent bool, data byte, err error) {
	req := [requestSize]byte{present, command, 0x00}
	if err = writeFull(b.port, req[:]); err != nil {
		return false, false, 0, err
	}
	var rsp [replySize]byte
	if err = readFull(b.port, rsp[:]); err != nil {
		return false, false, 0, err
	}
	return rsp[0] != 0, rsp[1] != 0, rsp[2], nil
}

// Powered reports whether the adapter last reported its card as
// powered on.
func (b *Bridge) Powered() bool {
	return b.powered
}

// PowerOn asks the adapter to power its card on.
func (b *Bridge) PowerOn() bool {
	_, present, _, err := b.roundTrip(1, reqHighZ)
	if err != nil {
		return false
	}
	b.powered = present
	return present
}

// PowerOff asks the adapter to power its card off.
func (b *Bridge) PowerOff() bool {
	_, present, _, err := b.roundTrip(0, reqHighZ)
	if err != nil {
		return false
	}
	wasOn := b.powered
	b.powered = present
	return wasOn && !present
}

// Send forwards command to the real card over the wire and returns its
// ack/response. A transport error is reported as (false, HighZ), the
// same shape an unpowered card reports refusal with.
func (b *Bridge) Send(command protocol.TriState) (ack bool, data protocol.TriState) {
	present := byte(0)
	if b.powered {
		present = 1
	}
	wire := byte(reqHighZ)
	if v, ok := command.Value(); ok {
		wire = v
	}

	gotAck, gotPresent, gotData, err := b.roundTrip(present, wire)
	if err != nil {
		return false, protocol.HighZ
	}
	b.powered = gotPresent
	if !b.powered {
		return false, protocol.HighZ
	}
	return gotAck, protocol.Byte(gotData)
}
