package protocol

// Card geometry. Sector = 128 bytes, Block = 64 sectors, Card = 16
// blocks: 128 * 64 * 16 = 131072 bytes.
const (
	SectorSize      = 128
	SectorsPerBlock = 64
	BlocksPerCard   = 16
	BlockSize       = SectorsPerBlock * SectorSize
	CardSize        = BlocksPerCard * BlockSize
	SectorCount     = BlocksPerCard * SectorsPerBlock

	// MaxSectorIndex is the highest valid sector address (0x03FF).
	MaxSectorIndex = SectorCount - 1
)

// PoisonAddress marks an out-of-range sector request internally so
// that framing can still complete while buffer access is skipped.
const PoisonAddress uint16 = 0xFFFF

// Bus-level magic bytes.
const (
	CmdLeadIn byte = 0x81 // host-to-card command lead-in
	CmdRead   byte = 0x52
	CmdWrite  byte = 0x57
	CmdGetID  byte = 0x53

	ReplyMemCardID1  byte = 0x5A
	ReplyMemCardID2  byte = 0x5D
	ReplyCommandAck1 byte = 0x5C
	ReplyCommandAck2 byte = 0x5D

	StatusGood        byte = 0x47
	StatusBadChecksum byte = 0x4E
	StatusBadSector   byte = 0xFF

	// FlagInitValue is the value the card's status flag register takes
	// on power-on and keeps for its entire powered lifetime.
	FlagInitValue byte = 0x08
)

// GetIDReply is the fixed 8-byte reply sequence for the Get-Memory-Card-ID
// command, in emission order.
var GetIDReply = [8]byte{0x5A, 0x5D, 0x5C, 0x5D, 0x04, 0x00, 0x00, 0x80}
