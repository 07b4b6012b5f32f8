package card

import (
	"testing"

	"github.com/saxbophone/wondercard/protocol"
)

func TestUnpoweredSendIsAlwaysRefused(t *testing.T) {
	c := New()

	for _, cmd := range []protocol.TriState{protocol.HighZ, protocol.Byte(0x81), protocol.Byte(0x00)} {
		ack, data := c.Send(cmd)
		if ack {
			t.Fatalf("Send(%v) on unpowered card: got ack=true, want false", cmd)
		}
		if data.Defined() {
			t.Fatalf("Send(%v) on unpowered card: got defined data %v, want HighZ", cmd, data)
		}
	}
}

func TestIdleIgnoresAnythingButLeadIn(t *testing.T) {
	c := New()
	c.PowerOn()

	for cmdByte := 0; cmdByte < 256; cmdByte++ {
		if byte(cmdByte) == protocol.CmdLeadIn {
			continue
		}
		ack, data := c.Send(protocol.Byte(byte(cmdByte)))
		if ack {
			t.Fatalf("Send(0x%02X) in Idle: got ack=true, want false", cmdByte)
		}
		if data.Defined() {
			t.Fatalf("Send(0x%02X) in Idle: got defined data %v, want HighZ", cmdByte, data)
		}
		if c.state != stateIdle {
			t.Fatalf("Send(0x%02X) in Idle: card left Idle", cmdByte)
		}
	}
}

func TestPowerIdempotence(t *testing.T) {
	c := New()
	if !c.PowerOn() {
		t.Fatal("first PowerOn: want true")
	}
	if c.PowerOn() {
		t.Fatal("PowerOn while already on: want false")
	}
	if !c.PowerOff() {
		t.Fatal("first PowerOff: want true")
	}
	if c.PowerOff() {
		t.Fatal("PowerOff while already off: want false")
	}
}

func TestPowerOnResetsFlagAndState(t *testing.T) {
	c := New()
	c.PowerOn()
	// drive partway into a transaction:
	c.Send(protocol.Byte(0x81))
	c.Send(protocol.Byte(protocol.CmdRead))

	c.PowerOff()
	c.PowerOn()

	if c.state != stateIdle {
		t.Fatal("power-on did not reset top-level state to Idle")
	}
	if c.flag != protocol.FlagInitValue {
		t.Fatalf("power-on flag = 0x%02X, want 0x%02X", c.flag, protocol.FlagInitValue)
	}
}

// runSequence drives cmds through c one byte at a time and returns the
// full ack and data_out sequences observed.
func runSequence(c *Card, cmds []protocol.TriState) (acks []bool, outs []protocol.TriState) {
	acks = make([]bool, len(cmds))
	outs = make([]protocol.TriState, len(cmds))
	for i, cmd := range cmds {
		acks[i], outs[i] = c.Send(cmd)
	}
	return
}

func bytesToCommands(bs ...byte) []protocol.TriState {
	cmds := make([]protocol.TriState, len(bs))
	for i, b := range bs {
		cmds[i] = protocol.Byte(b)
	}
	return cmds
}

func TestGetIDScenario(t *testing.T) {
	c := New()
	c.PowerOn()

	cmds := bytesToCommands(0x81, 0x53, 0, 0, 0, 0, 0, 0, 0, 0)
	acks, outs := runSequence(c, cmds)

	wantAcks := []bool{true, true, true, true, true, true, true, true, true, false}
	wantOuts := []protocol.TriState{
		protocol.HighZ, protocol.Byte(0x08),
		protocol.Byte(0x5A), protocol.Byte(0x5D),
		protocol.Byte(0x5C), protocol.Byte(0x5D),
		protocol.Byte(0x04), protocol.Byte(0x00), protocol.Byte(0x00), protocol.Byte(0x80),
	}

	for i := range cmds {
		if acks[i] != wantAcks[i] {
			t.Errorf("step %d: ack = %v, want %v", i, acks[i], wantAcks[i])
		}
		if outs[i] != wantOuts[i] {
			t.Errorf("step %d: data_out = %v, want %v", i, outs[i], wantOuts[i])
		}
	}
}

func TestReadGoodSectorZero(t *testing.T) {
	c := New()
	c.PowerOn()

	// 0x81, 0x52 select Read-Data, then 138 zero bytes drive every
	// remaining step (id echo, address, ack echo, confirm, 128 data
	// bytes, checksum, end byte) through to completion: 140 steps total.
	cmds := append(bytesToCommands(0x81, 0x52), bytesToCommands(make([]byte, 138)...)...)
	acks, outs := runSequence(c, cmds)

	for i := 0; i < len(acks)-1; i++ {
		if !acks[i] {
			t.Fatalf("step %d: ack = false, want true", i)
		}
	}
	if acks[len(acks)-1] {
		t.Fatal("final step: ack = true, want false")
	}

	wantPrefix := []protocol.TriState{
		protocol.HighZ, protocol.Byte(0x08),
		protocol.Byte(0x5A), protocol.Byte(0x5D),
		protocol.Byte(0x00), protocol.Byte(0x00),
		protocol.Byte(0x5C), protocol.Byte(0x5D),
		protocol.Byte(0x00), protocol.Byte(0x00),
	}
	for i, want := range wantPrefix {
		if outs[i] != want {
			t.Errorf("prefix step %d: data_out = %v, want %v", i, outs[i], want)
		}
	}
	for i := 0; i < 128; i++ {
		if outs[10+i] != protocol.Byte(0x00) {
			t.Errorf("data byte %d: data_out = %v, want 0x00", i, outs[10+i])
		}
	}
	if outs[138] != protocol.Byte(0x00) {
		t.Errorf("checksum: data_out = %v, want 0x00", outs[138])
	}
	if outs[139] != protocol.Byte(protocol.StatusGood) {
		t.Errorf("end byte: data_out = %v, want 0x47", outs[139])
	}
}

func TestReadBadSector(t *testing.T) {
	c := New()
	c.PowerOn()

	cmds := bytesToCommands(0x81, 0x52, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00)
	acks, outs := runSequence(c, cmds)

	wantAcks := []bool{true, true, true, true, true, true, true, true, true, false}
	wantOuts := []protocol.TriState{
		protocol.HighZ, protocol.Byte(0x08),
		protocol.Byte(0x5A), protocol.Byte(0x5D),
		protocol.Byte(0x00), protocol.Byte(0x00),
		protocol.Byte(0x5C), protocol.Byte(0x5D),
		protocol.Byte(0xFF), protocol.Byte(0xFF),
	}

	for i := range cmds {
		if acks[i] != wantAcks[i] {
			t.Errorf("step %d: ack = %v, want %v", i, acks[i], wantAcks[i])
		}
		if outs[i] != wantOuts[i] {
			t.Errorf("step %d: data_out = %v, want %v", i, outs[i], wantOuts[i])
		}
	}
}

func TestWriteGoodSector(t *testing.T) {
	c := New()
	c.PowerOn()

	data := make([]byte, 128)
	for i := range data {
		data[i] = 0x13
	}
	checksum := byte(0x00) ^ byte(0x01)
	for _, b := range data {
		checksum ^= b
	}

	cmds := bytesToCommands(0x81, 0x57, 0x00, 0x00, 0x00, 0x01)
	cmds = append(cmds, bytesToCommands(data...)...)
	cmds = append(cmds, bytesToCommands(checksum, 0x00, 0x00, 0x00)...)

	acks, outs := runSequence(c, cmds)
	for i := 0; i < len(acks)-1; i++ {
		if !acks[i] {
			t.Fatalf("step %d: ack = false, want true", i)
		}
	}
	if acks[len(acks)-1] {
		t.Fatal("final step: ack = true, want false")
	}
	if got := outs[len(outs)-1]; got != protocol.Byte(protocol.StatusGood) {
		t.Fatalf("terminal byte = %v, want 0x47", got)
	}

	sector := c.Sector(1)
	for i, b := range sector {
		if b != 0x13 {
			t.Fatalf("sector[1][%d] = 0x%02X, want 0x13", i, b)
		}
	}
}

func TestWriteBadChecksumStillCommits(t *testing.T) {
	c := New()
	c.PowerOn()

	data := make([]byte, 128)
	for i := range data {
		data[i] = 0x13
	}
	checksum := byte(0x00) ^ byte(0x01)
	for _, b := range data {
		checksum ^= b
	}
	corrupted := ^checksum

	cmds := bytesToCommands(0x81, 0x57, 0x00, 0x00, 0x00, 0x01)
	cmds = append(cmds, bytesToCommands(data...)...)
	cmds = append(cmds, bytesToCommands(corrupted, 0x00, 0x00, 0x00)...)

	_, outs := runSequence(c, cmds)
	if got := outs[len(outs)-1]; got != protocol.Byte(protocol.StatusBadChecksum) {
		t.Fatalf("terminal byte = %v, want 0x4E", got)
	}

	sector := c.Sector(1)
	for i, b := range sector {
		if b != 0x13 {
			t.Fatalf("sector[1][%d] = 0x%02X, want 0x13 (bad-checksum writes still commit)", i, b)
		}
	}
}

func TestWriteToBadSectorDoesNotMutateBuffer(t *testing.T) {
	c := New()
	c.PowerOn()

	data := make([]byte, 128)
	for i := range data {
		data[i] = 0xAA
	}

	// address 0x0400 is out of range
	cmds := bytesToCommands(0x81, 0x57, 0x00, 0x00, 0x04, 0x00)
	cmds = append(cmds, bytesToCommands(data...)...)
	cmds = append(cmds, bytesToCommands(0x00, 0x00, 0x00, 0x00)...)

	_, outs := runSequence(c, cmds)
	if got := outs[len(outs)-1]; got != protocol.Byte(protocol.StatusBadSector) {
		t.Fatalf("terminal byte = %v, want 0xFF", got)
	}

	for i := 0; i < protocol.SectorCount; i++ {
		for j, b := range c.Sector(i) {
			if b != 0 {
				t.Fatalf("sector %d byte %d = 0x%02X, want 0x00: out-of-range write leaked into buffer", i, j, b)
			}
		}
	}
}

func TestAddressabilityAcrossViews(t *testing.T) {
	c := New()
	c.PowerOn()

	for b := 0; b < protocol.BlocksPerCard; b++ {
		for s := 0; s < protocol.SectorsPerBlock; s++ {
			for k := 0; k < protocol.SectorSize; k++ {
				sectorIndex := b*protocol.SectorsPerBlock + s
				value := byte((b*protocol.SectorsPerBlock+s)*protocol.SectorSize + k)
				c.Block(b)[s*protocol.SectorSize+k] = value
				if got := c.Sector(sectorIndex)[k]; got != value {
					t.Fatalf("block/sector view mismatch at b=%d s=%d k=%d: got 0x%02X want 0x%02X", b, s, k, got, value)
				}
				if got := c.bytes[sectorIndex*protocol.SectorSize+k]; got != value {
					t.Fatalf("raw buffer mismatch at b=%d s=%d k=%d", b, s, k)
				}
			}
		}
	}
}
