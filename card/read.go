package card

import "github.com/saxbophone/wondercard/protocol"

// readStep is the sub-state of the Read-Data command.
type readStep int

const (
	readRecvID1 readStep = iota
	readRecvID2
	readSendAddrMSB
	readSendAddrLSB
	readRecvAck1
	readRecvAck2
	readConfirmAddrMSB
	readConfirmAddrLSB
	readRecvDataSector
	readRecvChecksum
	readRecvEndByte
)

type readState struct {
	step        readStep
	address     uint16
	checksum    byte
	byteCounter uint8
}

// stepRead advances the Read-Data sub-machine by one command byte. See
// the spec's Read-Data step table for the exact per-state contract.
func (c *Card) stepRead(command protocol.TriState) (ack bool, data protocol.TriState) {
	s := &c.read

	switch s.step {
	case readRecvID1:
		s.step = readRecvID2
		return true, protocol.Byte(protocol.ReplyMemCardID1)

	case readRecvID2:
		s.step = readSendAddrMSB
		return true, protocol.Byte(protocol.ReplyMemCardID2)

	case readSendAddrMSB:
		s.checksum = command.Or(0xFF)
		s.address = uint16(s.checksum) << 8
		s.step = readSendAddrLSB
		return true, protocol.Byte(0x00)

	case readSendAddrLSB:
		lsb := command.Or(0xFF)
		s.address |= uint16(lsb)
		s.checksum ^= lsb
		if s.address > protocol.MaxSectorIndex {
			s.address = protocol.PoisonAddress
		}
		s.step = readRecvAck1
		return true, protocol.Byte(0x00)

	case readRecvAck1:
		s.step = readRecvAck2
		return true, protocol.Byte(protocol.ReplyCommandAck1)

	case readRecvAck2:
		s.step = readConfirmAddrMSB
		return true, protocol.Byte(protocol.ReplyCommandAck2)

	case readConfirmAddrMSB:
		s.step = readConfirmAddrLSB
		return true, protocol.Byte(byte(s.address >> 8))

	case readConfirmAddrLSB:
		data = protocol.Byte(byte(s.address & 0xFF))
		if s.address == protocol.PoisonAddress {
			c.state = stateIdle
			return false, data
		}
		s.byteCounter = 0
		s.step = readRecvDataSector
		return true, data

	case readRecvDataSector:
		b := c.Sector(int(s.address))[s.byteCounter]
		s.checksum ^= b
		s.byteCounter++
		if s.byteCounter == protocol.SectorSize {
			s.step = readRecvChecksum
		}
		return true, protocol.Byte(b)

	case readRecvChecksum:
		s.step = readRecvEndByte
		return true, protocol.Byte(s.checksum)

	case readRecvEndByte:
		c.state = stateIdle
		return false, protocol.Byte(protocol.StatusGood)

	default:
		c.state = stateIdle
		return false, protocol.HighZ
	}
}
