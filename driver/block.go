package driver

import (
	"github.com/saxbophone/wondercard/protocol"
	"github.com/saxbophone/wondercard/slot"
)

// ReadBlock reads all 64 sectors of block index into out, which must
// be at least BlockSize bytes long. It stops and returns the first
// sector failure encountered; no partial-failure rollback is
// attempted.
func ReadBlock(s *slot.Slot, index int, out []byte) IOResult {
	base := index * protocol.SectorsPerBlock
	for i := 0; i < protocol.SectorsPerBlock; i++ {
		off := i * protocol.SectorSize
		if result := ReadSector(s, base+i, out[off:off+protocol.SectorSize]); result != Success {
			return result
		}
	}
	return Success
}

// WriteBlock writes all 64 sectors of block index from data, which
// must be at least BlockSize bytes long. It stops and returns the
// first sector failure encountered; the buffer may be partially
// written on failure.
func WriteBlock(s *slot.Slot, index int, data []byte) IOResult {
	base := index * protocol.SectorsPerBlock
	for i := 0; i < protocol.SectorsPerBlock; i++ {
		off := i * protocol.SectorSize
		if result := WriteSector(s, base+i, data[off:off+protocol.SectorSize]); result != Success {
			return result
		}
	}
	return Success
}

// ReadCard reads all 16 blocks of the card into out, which must be at
// least CardSize bytes long.
func ReadCard(s *slot.Slot, out []byte) IOResult {
	for i := 0; i < protocol.BlocksPerCard; i++ {
		off := i * protocol.BlockSize
		if result := ReadBlock(s, i, out[off:off+protocol.BlockSize]); result != Success {
			return result
		}
	}
	return Success
}

// WriteCard writes all 16 blocks of the card from data, which must be
// at least CardSize bytes long.
func WriteCard(s *slot.Slot, data []byte) IOResult {
	for i := 0; i < protocol.BlocksPerCard; i++ {
		off := i * protocol.BlockSize
		if result := WriteBlock(s, i, data[off:off+protocol.BlockSize]); result != Success {
			return result
		}
	}
	return Success
}
