// Package card implements the virtual PS1-style memory card: a state
// machine that consumes one command byte per Send call and produces an
// ACK plus a response byte, exactly mirroring the wire protocol a real
// memory card exposes to its console.
package card

import (
	"fmt"

	"github.com/saxbophone/wondercard/protocol"
)

type topState int

const (
	stateIdle topState = iota
	stateAwaitingCommand
	stateReading
	stateWriting
	stateGettingID
)

// Card is a virtual memory card: 128 KiB of byte storage plus the
// protocol state machine described in the spec. The zero value is a
// card that has never been powered on with a zeroed buffer.
type Card struct {
	powered bool
	flag    byte
	state   topState

	read  readState
	write writeState
	getID getIDState

	bytes [protocol.CardSize]byte
}

// New returns a freshly constructed, powered-off, zeroed Card.
func New() *Card {
	return &Card{}
}

// NewWithData returns a powered-off Card preloaded with data, which
// must be exactly CardSize bytes. This mirrors the original
// implementation's data-preloading constructor; it is not part of the
// wire protocol and must only be used before the card is inserted.
func NewWithData(data []byte) (*Card, error) {
	if len(data) != protocol.CardSize {
		return nil, fmt.Errorf("card: NewWithData: expected %d bytes, got %d", protocol.CardSize, len(data))
	}
	c := New()
	copy(c.bytes[:], data)
	return c, nil
}

// Powered reports whether the card is currently powered on.
func (c *Card) Powered() bool {
	return c.powered
}

// PowerOn simulates the card being powered up, e.g. on insertion into
// a slot. Returns false without effect if the card is already on.
func (c *Card) PowerOn() bool {
	if c.powered {
		return false
	}
	c.powered = true
	c.flag = protocol.FlagInitValue
	c.state = stateIdle
	c.read = readState{}
	c.write = writeState{}
	c.getID = getIDState{}
	return true
}

// PowerOff simulates the card being powered down, e.g. on removal from
// a slot. Returns false without effect if the card is already off. The
// byte buffer is not cleared.
func (c *Card) PowerOff() bool {
	if !c.powered {
		return false
	}
	c.powered = false
	return true
}

// Send advances the state machine by exactly one command byte,
// returning the card's ACK and response for that byte. While
// unpowered, every call returns (false, HighZ) with no other effect.
func (c *Card) Send(command protocol.TriState) (ack bool, data protocol.TriState) {
	if !c.powered {
		return false, protocol.HighZ
	}

	switch c.state {
	case stateIdle:
		if v, ok := command.Value(); ok && v == protocol.CmdLeadIn {
			c.state = stateAwaitingCommand
			return true, protocol.HighZ
		}
		return false, protocol.HighZ

	case stateAwaitingCommand:
		data = protocol.Byte(c.flag)
		switch command.Or(0x00) {
		case protocol.CmdRead:
			c.state = stateReading
			c.read = readState{}
			return true, data
		case protocol.CmdWrite:
			c.state = stateWriting
			c.write = writeState{}
			return true, data
		case protocol.CmdGetID:
			c.state = stateGettingID
			c.getID = getIDState{}
			return true, data
		default:
			c.state = stateIdle
			return false, data
		}

	case stateReading:
		return c.stepRead(command)
	case stateWriting:
		return c.stepWrite(command)
	case stateGettingID:
		return c.stepGetID(command)
	default:
		// unreachable: every top-level state is handled above
		c.state = stateIdle
		return false, protocol.HighZ
	}
}

// Sector returns a mutable view of the SectorSize-byte sector with the
// given index. index is not validated; callers within [0, SectorCount)
// get a valid slice, callers outside that range get a panic from the
// underlying array bounds check.
func (c *Card) Sector(index int) []byte {
	start := index * protocol.SectorSize
	return c.bytes[start : start+protocol.SectorSize]
}

// Block returns a mutable view of the BlockSize-byte block with the
// given index. index is not validated; see Sector.
func (c *Card) Block(index int) []byte {
	start := index * protocol.BlockSize
	return c.bytes[start : start+protocol.BlockSize]
}
