package wav

import (
	"time"
)

// Tag is a raw four-character RIFF chunk identifier.
type Tag [4]byte

func (t Tag) String() string { return string(t[:]) }

var (
	TagRIFF = Tag{'R', 'I', 'F', 'F'}
	TagWAVE = Tag{'W', 'A', 'V', 'E'}
	TagFmt  = Tag{'f', 'm', 't', ' '}
	TagData = Tag{'d', 'a', 't', 'a'}
	TagID3  = Tag{'i', 'd', '3', ' '}
)

// ChunkID is the closed set of chunk kinds the parser understands.
type ChunkID int

const (
	ChunkUnknown ChunkID = iota
	ChunkRIFF
	ChunkFmt
	ChunkData
)

// ChunkIDOf classifies a raw tag.
func ChunkIDOf(tag Tag) ChunkID {
	switch tag {
	case TagRIFF:
		return ChunkRIFF
	case TagFmt:
		return ChunkFmt
	case TagData:
		return ChunkData
	default:
		return ChunkUnknown
	}
}

// Format is the WAVE format code of the fmt chunk.
type Format uint16

const (
	FormatUnknown    Format = 0x0000
	FormatPCM        Format = 0x0001
	FormatExtensible Format = 0xFFFE
)

// fmtFieldsLength is the size of the PCM fields of a fmt chunk.
const fmtFieldsLength = 16

// RiffChunk is the outer RIFF header.
type RiffChunk struct {
	Length uint32
	FileID Tag
}

// FormatChunk holds the fields of a fmt chunk.
type FormatChunk struct {
	Length        uint32
	Format        Format
	Channels      uint16
	SampleRate    uint32
	BytesPerSec   uint32
	BlockSize     uint16
	BitsPerSample uint16
}

// DataChunk locates the PCM payload inside the source file.
type DataChunk struct {
	Length uint32
	Offset int64 // absolute position of the first payload byte
}

// RawChunk records a chunk the parser skipped.
type RawChunk struct {
	ID     Tag
	Length uint32
	Offset int64
}

// Container is a parsed and validated WAV file.
type Container struct {
	Riff   RiffChunk
	Format FormatChunk
	Data   DataChunk
	Extra  []RawChunk
}

// Duration returns the playing time of the payload.
func (c *Container) Duration() time.Duration {
	if c.Format.BytesPerSec == 0 {
		return 0
	}
	return time.Duration(c.Data.Length) * time.Second / time.Duration(c.Format.BytesPerSec)
}
