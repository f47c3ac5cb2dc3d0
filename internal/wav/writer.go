package wav

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// HeaderLength is the size of the canonical header written before PCM data.
const HeaderLength = 44

// copyBufferSize is the transfer unit used when streaming PCM.
const copyBufferSize = 1024

// header is the canonical 44-byte WAV header, written in one piece.
type header struct {
	RiffID   Tag
	FileSize uint32 // everything after this field
	WaveID   Tag

	FmtID         Tag
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16

	DataID   Tag
	DataSize uint32
}

// Chunk is an extra chunk written after the PCM payload.
type Chunk struct {
	ID   Tag
	Data []byte
}

func (c Chunk) size() uint32 {
	n := uint32(len(c.Data))
	return 8 + n + n&1
}

// Writer emits one WAV file: header, exactly Length bytes of PCM, a pad
// byte when Length is odd, then the extra chunks.
type Writer struct {
	Path   string
	Length uint32

	f       *os.File
	bw      *bufio.Writer
	written uint32
	extra   []Chunk
}

// Create opens path for writing, truncating any existing file.
// This is boundary code - performs file I/O.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create wav: %w", err)
	}
	return &Writer{Path: path, f: f, bw: bufio.NewWriter(f)}, nil
}

// WriteHeader writes the RIFF, fmt and data headers for a payload of length
// bytes. The fmt fields are copied from format; the fmt chunk is always
// written as the 16-byte PCM layout.
func (w *Writer) WriteHeader(format FormatChunk, length uint32, extra ...Chunk) error {
	w.Length = length
	w.extra = extra

	riffLength := uint32(4) + (8 + fmtFieldsLength) + 8 + length + length&1
	for _, c := range extra {
		riffLength += c.size()
	}

	h := header{
		RiffID:        TagRIFF,
		FileSize:      riffLength,
		WaveID:        TagWAVE,
		FmtID:         TagFmt,
		FmtSize:       fmtFieldsLength,
		AudioFormat:   uint16(format.Format),
		NumChannels:   format.Channels,
		SampleRate:    format.SampleRate,
		ByteRate:      format.BytesPerSec,
		BlockAlign:    format.BlockSize,
		BitsPerSample: format.BitsPerSample,
		DataID:        TagData,
		DataSize:      length,
	}

	if err := binary.Write(w.bw, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	return nil
}

// CopyPCM streams exactly Length bytes from src in copyBufferSize pieces.
// src must already be positioned at the first byte of the track.
func (w *Writer) CopyPCM(src io.Reader) (int64, error) {
	buf := make([]byte, copyBufferSize)
	var total int64

	for w.written < w.Length {
		n := min(uint32(len(buf)), w.Length-w.written)
		read, err := io.ReadFull(src, buf[:n])
		if read > 0 {
			if _, werr := w.bw.Write(buf[:read]); werr != nil {
				return total, fmt.Errorf("write pcm: %w", werr)
			}
			w.written += uint32(read)
			total += int64(read)
		}
		if err != nil {
			return total, fmt.Errorf("read pcm at %d of %d bytes: %w", w.written, w.Length, err)
		}
	}

	return total, nil
}

// Close finishes the file: pad byte, extra chunks, flush. It fails if fewer
// than Length payload bytes were written.
func (w *Writer) Close() error {
	err := w.finish()
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	return err
}

func (w *Writer) finish() error {
	if w.written != w.Length {
		return fmt.Errorf("wav %s: wrote %d of %d payload bytes", w.Path, w.written, w.Length)
	}
	if w.Length&1 == 1 {
		if err := w.bw.WriteByte(0); err != nil {
			return fmt.Errorf("write pad: %w", err)
		}
	}
	for _, c := range w.extra {
		if err := writeChunk(w.bw, c); err != nil {
			return err
		}
	}
	return w.bw.Flush()
}

// Abort closes and removes a partially written file.
func (w *Writer) Abort() error {
	return errors.Join(w.f.Close(), os.Remove(w.Path))
}

func writeChunk(w io.Writer, c Chunk) error {
	n := uint32(len(c.Data))
	if _, err := w.Write(c.ID[:]); err != nil {
		return fmt.Errorf("write %q chunk: %w", c.ID.String(), err)
	}
	if err := binary.Write(w, binary.LittleEndian, n); err != nil {
		return fmt.Errorf("write %q chunk: %w", c.ID.String(), err)
	}
	if _, err := w.Write(c.Data); err != nil {
		return fmt.Errorf("write %q chunk: %w", c.ID.String(), err)
	}
	if n&1 == 1 {
		if _, err := w.Write([]byte{0}); err != nil {
			return fmt.Errorf("write %q chunk: %w", c.ID.String(), err)
		}
	}
	return nil
}
