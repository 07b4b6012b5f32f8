package card

import "github.com/saxbophone/wondercard/protocol"

// writeStep is the sub-state of the Write-Data command.
type writeStep int

const (
	writeRecvID1 writeStep = iota
	writeRecvID2
	writeSendAddrMSB
	writeSendAddrLSB
	writeSendDataSector
	writeSendChecksum
	writeRecvAck1
	writeRecvAck2
	writeRecvEndByte
)

type writeState struct {
	step        writeStep
	address     uint16
	checksum    byte
	byteCounter uint8
	badChecksum bool
}

// stepWrite advances the Write-Data sub-machine by one command byte.
// Per the spec's resolved Open Question 1, a bad-checksum write still
// commits its sector data: the write happens in SendDataSector, the
// state before the checksum comparison in SendChecksum.
func (c *Card) stepWrite(command protocol.TriState) (ack bool, data protocol.TriState) {
	s := &c.write

	switch s.step {
	case writeRecvID1:
		s.step = writeRecvID2
		return true, protocol.Byte(protocol.ReplyMemCardID1)

	case writeRecvID2:
		s.step = writeSendAddrMSB
		return true, protocol.Byte(protocol.ReplyMemCardID2)

	case writeSendAddrMSB:
		s.checksum = command.Or(0xFF)
		s.address = uint16(s.checksum) << 8
		s.step = writeSendAddrLSB
		return true, protocol.Byte(0x00)

	case writeSendAddrLSB:
		lsb := command.Or(0xFF)
		s.address |= uint16(lsb)
		s.checksum ^= lsb
		if s.address > protocol.MaxSectorIndex {
			s.address = protocol.PoisonAddress
		}
		s.byteCounter = 0
		s.step = writeSendDataSector
		return true, protocol.Byte(0x00)

	case writeSendDataSector:
		b := command.Or(0xFF)
		if s.address != protocol.PoisonAddress {
			c.Sector(int(s.address))[s.byteCounter] = b
		}
		s.checksum ^= b
		s.byteCounter++
		if s.byteCounter == protocol.SectorSize {
			s.step = writeSendChecksum
		}
		return true, protocol.Byte(0x00)

	case writeSendChecksum:
		sent := command.Or(^s.checksum)
		s.badChecksum = sent != s.checksum
		s.step = writeRecvAck1
		return true, protocol.Byte(0x00)

	case writeRecvAck1:
		s.step = writeRecvAck2
		return true, protocol.Byte(protocol.ReplyCommandAck1)

	case writeRecvAck2:
		s.step = writeRecvEndByte
		return true, protocol.Byte(protocol.ReplyCommandAck2)

	case writeRecvEndByte:
		c.state = stateIdle
		status := protocol.StatusGood
		switch {
		case s.address == protocol.PoisonAddress:
			status = protocol.StatusBadSector
		case s.badChecksum:
			status = protocol.StatusBadChecksum
		}
		return false, protocol.Byte(status)

	default:
		c.state = stateIdle
		return false, protocol.HighZ
	}
}
