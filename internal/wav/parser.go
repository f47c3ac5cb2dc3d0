// Package wav reads and writes RIFF/WAVE containers holding PCM audio.
//
// Parsing walks the chunk sequence of a file through a binio.Reader and
// records where the PCM payload lives; the payload itself is never loaded.
// Writing produces a minimal canonical file: RIFF header, a 16-byte fmt
// chunk, the data chunk and any extra chunks appended after it.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/binaryphile/cd-split/internal/binio"
)

// ParseFile opens path and parses its container.
// This is boundary code - performs file I/O.
func ParseFile(path string, log logrus.FieldLogger) (*Container, error) {
	r, err := binio.Open(path, binary.LittleEndian)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer r.Close()

	return Parse(r, log)
}

// Parse walks the chunks of r from its current position until EOF and
// validates the result. No partial container is returned on failure.
func Parse(r *binio.Reader, log logrus.FieldLogger) (*Container, error) {
	if log == nil {
		log = discard()
	}

	var c Container
	var haveRiff, haveFmt, haveData bool

walk:
	for !r.EOF() {
		var tag Tag
		start := r.Pos()
		if err := r.ReadBytes(tag[:]); err != nil {
			log.WithField("offset", start).Debug("trailing bytes shorter than a chunk tag")
			break
		}

		switch ChunkIDOf(tag) {
		case ChunkRIFF:
			riff, err := parseRiffChunk(r)
			if err != nil {
				return nil, err
			}
			if riff.FileID != TagWAVE {
				log.WithField("file_id", fmt.Sprintf("%q", riff.FileID.String())).Warn("invalid RIFF file ID")
			}
			c.Riff, haveRiff = riff, true

		case ChunkFmt:
			f, err := parseFormatChunk(r)
			if err != nil {
				return nil, err
			}
			c.Format, haveFmt = f, true

		case ChunkData:
			d, err := parseDataChunk(r)
			if err != nil {
				return nil, err
			}
			c.Data, haveData = d, true

		default:
			raw, ok, err := skipChunk(r, tag)
			if err != nil {
				return nil, err
			}
			log.WithFields(logrus.Fields{
				"chunk":  tag.String(),
				"offset": raw.Offset,
				"length": raw.Length,
			}).Debug("skipping unknown chunk")
			c.Extra = append(c.Extra, raw)
			if !ok {
				log.WithField("chunk", tag.String()).Warn("chunk length runs past end of file")
				break walk
			}
		}
	}

	if !haveRiff || !haveFmt || !haveData {
		return nil, fmt.Errorf("%w (riff=%t fmt=%t data=%t)", ErrMissingChunk, haveRiff, haveFmt, haveData)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Container) validate() error {
	f := c.Format

	if c.Riff.FileID != TagWAVE {
		return fmt.Errorf("%w: got %q", ErrNotWave, c.Riff.FileID.String())
	}
	if f.BitsPerSample != 8 && f.BitsPerSample != 16 {
		return fmt.Errorf("%w: got %d", ErrBitsPerSample, f.BitsPerSample)
	}
	if f.Channels != 1 && f.Channels != 2 {
		return fmt.Errorf("%w: got %d", ErrChannels, f.Channels)
	}

	blockSize := (f.BitsPerSample / 8) * f.Channels
	if f.BlockSize != blockSize {
		return fmt.Errorf("%w: got %d, want %d", ErrBlockSize, f.BlockSize, blockSize)
	}
	if f.BytesPerSec != f.SampleRate*uint32(blockSize) {
		return fmt.Errorf("%w: got %d, want %d", ErrBytesPerSec, f.BytesPerSec, f.SampleRate*uint32(blockSize))
	}

	return nil
}

func parseRiffChunk(r *binio.Reader) (RiffChunk, error) {
	var riff RiffChunk
	var err error

	if riff.Length, err = r.ReadUint32(); err != nil {
		return RiffChunk{}, fmt.Errorf("read RIFF chunk: %w", err)
	}
	if err = r.ReadBytes(riff.FileID[:]); err != nil {
		return RiffChunk{}, fmt.Errorf("read RIFF chunk: %w", err)
	}

	return riff, nil
}

// parseFormatChunk reads the PCM fields in file order. Any extension bytes
// beyond them (WAVE_FORMAT_EXTENSIBLE, cbSize) are skipped so the walk
// stays aligned.
func parseFormatChunk(r *binio.Reader) (FormatChunk, error) {
	var f FormatChunk
	var format uint16
	var errs []error

	read16 := func(dst *uint16) {
		v, err := r.ReadUint16()
		*dst = v
		errs = append(errs, err)
	}
	read32 := func(dst *uint32) {
		v, err := r.ReadUint32()
		*dst = v
		errs = append(errs, err)
	}

	read32(&f.Length)
	read16(&format)
	read16(&f.Channels)
	read32(&f.SampleRate)
	read32(&f.BytesPerSec)
	read16(&f.BlockSize)
	read16(&f.BitsPerSample)

	if err := errors.Join(errs...); err != nil {
		return FormatChunk{}, fmt.Errorf("read fmt chunk: %w", err)
	}
	f.Format = Format(format)

	if f.Length > fmtFieldsLength {
		if _, err := r.Seek(int64(f.Length-fmtFieldsLength)+int64(f.Length&1), binio.Current); err != nil {
			return FormatChunk{}, fmt.Errorf("skip fmt extension: %w", err)
		}
	}

	return f, nil
}

// parseDataChunk records the payload position and seeks past it.
func parseDataChunk(r *binio.Reader) (DataChunk, error) {
	var d DataChunk
	var err error

	if d.Length, err = r.ReadUint32(); err != nil {
		return DataChunk{}, fmt.Errorf("read data chunk: %w", err)
	}
	d.Offset = r.Pos()

	if d.Offset+int64(d.Length) > r.Size() {
		return DataChunk{}, fmt.Errorf("%w: %d bytes declared at offset %d, file is %d bytes",
			ErrDataOverrun, d.Length, d.Offset, r.Size())
	}
	if _, err := r.Seek(int64(d.Length), binio.Current); err != nil {
		return DataChunk{}, fmt.Errorf("skip data chunk: %w", err)
	}

	// RIFF chunks are word aligned; an odd payload is followed by one pad byte.
	if d.Length&1 == 1 && !r.EOF() {
		if _, err := r.ReadUint8(); err != nil {
			return DataChunk{}, fmt.Errorf("read data pad: %w", err)
		}
	}

	return d, nil
}

// skipChunk steps over a chunk the parser does not interpret. ok is false
// when the declared length runs past the end of the file.
func skipChunk(r *binio.Reader, tag Tag) (RawChunk, bool, error) {
	length, err := r.ReadUint32()
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return RawChunk{ID: tag, Offset: r.Pos()}, false, nil
		}
		return RawChunk{}, false, fmt.Errorf("read %q chunk: %w", tag.String(), err)
	}

	raw := RawChunk{ID: tag, Length: length, Offset: r.Pos()}
	next := raw.Offset + int64(length) + int64(length&1)
	if raw.Offset+int64(length) > r.Size() {
		return raw, false, nil
	}
	if _, err := r.Seek(next, binio.Begin); err != nil {
		return RawChunk{}, false, fmt.Errorf("skip %q chunk: %w", tag.String(), err)
	}

	return raw, true, nil
}

func discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
