// Package binio provides a positioned, byte-order aware reader over a
// seekable binary stream.
//
// The reader keeps its own notion of position and size so callers can ask
// EOF() before issuing a read, which is how the RIFF chunk walk decides to
// stop. Fixed-width integer reads decode with the byte order chosen at
// construction; ReadBytes never reorders anything and is meant for raw
// four-character tags.
package binio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Origin selects the reference point of a Seek.
type Origin int

const (
	Begin Origin = iota
	Current
	End
)

func (o Origin) whence() int {
	switch o {
	case Current:
		return io.SeekCurrent
	case End:
		return io.SeekEnd
	default:
		return io.SeekStart
	}
}

// ErrClosed is returned by any operation on a closed Reader.
var ErrClosed = errors.New("binio: reader closed")

// Reader is a sequential typed reader over an io.ReadSeeker.
// It is not safe for concurrent use.
type Reader struct {
	rs     io.ReadSeeker
	closer io.Closer
	size   int64
	pos    int64
	order  binary.ByteOrder
	buf    [4]byte
}

// Open opens path for binary reading. order decides how 16- and 32-bit
// fields are decoded: binary.LittleEndian for RIFF, binary.BigEndian to
// read the same bytes swapped.
func Open(path string, order binary.ByteOrder) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("open %s: is a directory", path)
	}

	r := New(f, info.Size(), order)
	r.closer = f
	return r, nil
}

// New wraps an already open stream of the given total size.
// The stream is assumed to be positioned at offset 0.
func New(rs io.ReadSeeker, size int64, order binary.ByteOrder) *Reader {
	if order == nil {
		order = binary.LittleEndian
	}
	return &Reader{rs: rs, size: size, order: order}
}

// Close releases the underlying file when the Reader owns one.
func (r *Reader) Close() error {
	if r.rs == nil {
		return ErrClosed
	}
	r.rs = nil
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Size returns the total stream size in bytes.
func (r *Reader) Size() int64 { return r.size }

// Pos returns the current byte position.
func (r *Reader) Pos() int64 { return r.pos }

// EOF reports whether the position is at or past the end of the stream.
// It never touches the stream, so it is safe to call before a read.
func (r *Reader) EOF() bool { return r.pos >= r.size }

// Seek moves the position and returns the new absolute offset.
// Seeking past the end is allowed; EOF reports it.
func (r *Reader) Seek(offset int64, origin Origin) (int64, error) {
	if r.rs == nil {
		return r.pos, ErrClosed
	}
	pos, err := r.rs.Seek(offset, origin.whence())
	if err != nil {
		return r.pos, fmt.Errorf("seek %d: %w", offset, err)
	}
	r.pos = pos
	return pos, nil
}

// Read implements io.Reader so payload ranges can be streamed with io.Copy.
func (r *Reader) Read(p []byte) (int, error) {
	if r.rs == nil {
		return 0, ErrClosed
	}
	n, err := r.rs.Read(p)
	r.pos += int64(n)
	return n, err
}

// ReadBytes fills p exactly, without any byte reordering.
func (r *Reader) ReadBytes(p []byte) error {
	if r.rs == nil {
		return ErrClosed
	}
	n, err := io.ReadFull(r.rs, p)
	r.pos += int64(n)
	return err
}

// ReadUint8 reads one byte.
func (r *Reader) ReadUint8() (uint8, error) {
	if err := r.fill(1); err != nil {
		return 0, err
	}
	return r.buf[0], nil
}

// ReadUint16 reads a 16-bit field in the reader's byte order.
func (r *Reader) ReadUint16() (uint16, error) {
	if err := r.fill(2); err != nil {
		return 0, err
	}
	return r.order.Uint16(r.buf[:2]), nil
}

// ReadUint32 reads a 32-bit field in the reader's byte order.
func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.fill(4); err != nil {
		return 0, err
	}
	return r.order.Uint32(r.buf[:4]), nil
}

// fill reads n bytes into the scratch buffer. On a short read the caller
// gets an error and no value, so a failed read cannot leak partial data.
func (r *Reader) fill(n int) error {
	if err := r.ReadBytes(r.buf[:n]); err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}
