package driver

import (
	"fmt"

	"github.com/saxbophone/wondercard/internal/obslog"
	"github.com/saxbophone/wondercard/protocol"
	"github.com/saxbophone/wondercard/slot"
)

// Trace, if non-nil, receives one line per command exchanged by
// ReadSector/WriteSector, committed once the operation finishes,
// e.g. for tests that want to inspect the exact byte sequence a
// sector I/O drove without instrumenting slot/card directly.
var Trace *obslog.CommitLogger

// traceLineEstimate is the approximate length of one trace() line,
// used to size Trace's buffer up front and avoid repeated growth
// across a 128-byte sector's worth of exchanges.
const traceLineEstimate = 55

func reserveTrace(exchanges int) {
	if Trace != nil {
		Trace.Reserve(exchanges * traceLineEstimate)
	}
}

func trace(cmd byte, wantAck bool, ack bool, result IOResult) {
	if Trace == nil {
		return
	}
	fmt.Fprintf(Trace, "exchange cmd=%#02x wantAck=%v ack=%v result=%s\n", cmd, wantAck, ack, result)
}

// exchange drives one command byte through s and reports whether the
// result matches expectations: wantAck is the required ack, and
// expected, if non-nil, is the single response byte the card must
// return exactly (a nil expected means "don't care").
func exchange(s *slot.Slot, cmd byte, wantAck bool, expected *byte) (protocol.TriState, IOResult, bool) {
	ack, data, err := s.Send(protocol.Byte(cmd))
	if err != nil {
		trace(cmd, wantAck, false, NoCard)
		return data, NoCard, false
	}
	if ack != wantAck {
		if wantAck {
			trace(cmd, wantAck, ack, NoAck)
			return data, NoAck, false
		}
		trace(cmd, wantAck, ack, UnexpectedAck)
		return data, UnexpectedAck, false
	}
	if expected != nil {
		v, ok := data.Value()
		if !ok || v != *expected {
			trace(cmd, wantAck, ack, InvalidResponse)
			return data, InvalidResponse, false
		}
	}
	trace(cmd, wantAck, ack, Success)
	return data, Success, true
}

func byteP(v byte) *byte { return &v }

// ReadSector reads the 128-byte sector at index into out, which must
// be at least SectorSize bytes long, returning the classified outcome
// of the exchange. index is taken modulo SectorCount: the address
// bytes placed on the wire are derived by masking, so an index outside
// [0, SectorCount) silently aliases a valid sector rather than
// reaching the card as an out-of-range address.
func ReadSector(s *slot.Slot, index int, out []byte) IOResult {
	if !s.Occupied() {
		return NoCard
	}
	if Trace != nil {
		defer Trace.Commit()
	}
	reserveTrace(10 + protocol.SectorSize + 2)

	msb := byte((index >> 8) & 0x03)
	lsb := byte(index & 0xFF)

	steps := []struct {
		cmd      byte
		wantAck  bool
		expected *byte
	}{
		{protocol.CmdLeadIn, true, nil},
		{protocol.CmdRead, true, nil},
		{0x00, true, byteP(protocol.ReplyMemCardID1)},
		{0x00, true, byteP(protocol.ReplyMemCardID2)},
		{msb, true, nil},
		{lsb, true, nil},
		{0x00, true, byteP(protocol.ReplyCommandAck1)},
		{0x00, true, byteP(protocol.ReplyCommandAck2)},
		{0x00, true, byteP(msb)},
		{0x00, true, byteP(lsb)},
	}
	for _, st := range steps {
		if _, result, ok := exchange(s, st.cmd, st.wantAck, st.expected); !ok {
			return result
		}
	}

	checksum := msb ^ lsb
	for i := 0; i < protocol.SectorSize; i++ {
		data, result, ok := exchange(s, 0x00, true, nil)
		if !ok {
			return result
		}
		b, defined := data.Value()
		if !defined {
			return InvalidResponse
		}
		out[i] = b
		checksum ^= b
	}

	cardChecksum, result, ok := exchange(s, 0x00, true, nil)
	if !ok {
		return result
	}
	gotChecksum, defined := cardChecksum.Value()
	if !defined {
		return InvalidResponse
	}

	endByte, result, ok := exchange(s, 0x00, false, nil)
	if !ok {
		return result
	}
	v, defined := endByte.Value()
	if !defined || v != protocol.StatusGood || gotChecksum != checksum {
		return BadChecksum
	}
	return Success
}

// WriteSector writes the 128-byte sector at index from in, which must
// be at least SectorSize bytes long, returning the classified outcome
// of the exchange. See ReadSector for the modulo-SectorCount aliasing
// behavior of index.
func WriteSector(s *slot.Slot, index int, in []byte) IOResult {
	if !s.Occupied() {
		return NoCard
	}
	if Trace != nil {
		defer Trace.Commit()
	}
	reserveTrace(6 + protocol.SectorSize + 3 + 1)

	msb := byte((index >> 8) & 0x03)
	lsb := byte(index & 0xFF)

	header := []struct {
		cmd      byte
		wantAck  bool
		expected *byte
	}{
		{protocol.CmdLeadIn, true, nil},
		{protocol.CmdWrite, true, nil},
		{0x00, true, byteP(protocol.ReplyMemCardID1)},
		{0x00, true, byteP(protocol.ReplyMemCardID2)},
		{msb, true, nil},
		{lsb, true, nil},
	}
	for _, st := range header {
		if _, result, ok := exchange(s, st.cmd, st.wantAck, st.expected); !ok {
			return result
		}
	}

	checksum := msb ^ lsb
	for i := 0; i < protocol.SectorSize; i++ {
		if _, result, ok := exchange(s, in[i], true, nil); !ok {
			return result
		}
		checksum ^= in[i]
	}

	if _, result, ok := exchange(s, checksum, true, nil); !ok {
		return result
	}
	if _, result, ok := exchange(s, 0x00, true, byteP(protocol.ReplyCommandAck1)); !ok {
		return result
	}
	if _, result, ok := exchange(s, 0x00, true, byteP(protocol.ReplyCommandAck2)); !ok {
		return result
	}

	status, result, ok := exchange(s, 0x00, false, nil)
	if !ok {
		return result
	}
	v, defined := status.Value()
	if !defined {
		return InvalidResponse
	}
	switch v {
	case protocol.StatusGood:
		return Success
	case protocol.StatusBadChecksum:
		return BadChecksum
	case protocol.StatusBadSector:
		return BadSector
	default:
		return UnknownStatus
	}
}
