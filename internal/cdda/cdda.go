// Package cdda holds the Red Book CD-DA constants and the pure conversions
// between CD timing (minutes:seconds:frames) and byte offsets in a
// 44.1 kHz / 16-bit / stereo PCM stream.
package cdda

import (
	"fmt"
	"math"
)

// CD audio constants
const (
	SampleRate      = 44100 // Hz
	Channels        = 2     // Stereo
	BitsPerSample   = 16
	BlockSize       = Channels * BitsPerSample / 8 // 4 bytes per sample pair
	BytesPerSecond  = SampleRate * BlockSize       // 176400
	FramesPerSecond = 75
	BytesPerFrame   = BytesPerSecond / FramesPerSecond // 2352, raw CD-DA frame size
	LeadInFrames    = 150                              // 2 second lead-in before LBA 0
)

// Frames converts a minutes:seconds:frames address to an absolute frame count.
// This is a pure function: (mm, ss, ff) → frames
func Frames(minutes, seconds, frames int) uint32 {
	return uint32((minutes*60+seconds)*FramesPerSecond + frames)
}

// Bytes converts a frame count to a byte offset in CD-DA PCM.
// This is a pure function: frames → bytes
func Bytes(frames uint32) uint32 {
	return frames * BytesPerFrame
}

// MSF is a CD time address as written in CUE sheets (MM:SS:FF).
type MSF struct {
	Minutes int
	Seconds int
	Frames  int
}

// FrameCount returns the absolute frame count of m. Addresses past
// 2^32 frames wrap; use Offset for untrusted input.
func (m MSF) FrameCount() uint32 {
	return Frames(m.Minutes, m.Seconds, m.Frames)
}

// maxOffsetFrames is the last frame whose byte offset fits in a uint32,
// the widest offset a RIFF payload can hold.
const maxOffsetFrames = math.MaxUint32 / BytesPerFrame

// Offset returns the byte offset of m in CD-DA PCM. ok is false when the
// address lies beyond what a 32-bit payload can reach.
func (m MSF) Offset() (offset uint32, ok bool) {
	if m.Minutes < 0 || m.Seconds < 0 || m.Frames < 0 {
		return 0, false
	}
	if m.Minutes > maxOffsetFrames || m.Seconds > maxOffsetFrames || m.Frames > maxOffsetFrames {
		return 0, false
	}
	frames := (uint64(m.Minutes)*60+uint64(m.Seconds))*FramesPerSecond + uint64(m.Frames)
	if frames > maxOffsetFrames {
		return 0, false
	}
	return Bytes(uint32(frames)), true
}

func (m MSF) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", m.Minutes, m.Seconds, m.Frames)
}

// MSFFromFrames is the inverse of MSF.FrameCount.
func MSFFromFrames(frames uint32) MSF {
	f := int(frames)
	return MSF{
		Minutes: f / (60 * FramesPerSecond),
		Seconds: f / FramesPerSecond % 60,
		Frames:  f % FramesPerSecond,
	}
}

// MSFFromBytes converts a byte offset back to a CD address, truncating to
// whole frames.
func MSFFromBytes(offset uint32) MSF {
	return MSFFromFrames(offset / BytesPerFrame)
}
