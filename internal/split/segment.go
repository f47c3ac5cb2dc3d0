package split

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/binaryphile/cd-split/internal/cdda"
	"github.com/binaryphile/cd-split/internal/cue"
	"github.com/binaryphile/cd-split/internal/wav"
)

// ErrNotCDDA is returned when a CUE sheet accompanies audio that is not
// 44.1 kHz / 16-bit / stereo PCM.
var ErrNotCDDA = errors.New("split: format is not CD-DA")

// Track is one output track located in the source payload. Offsets and
// lengths are in bytes relative to the start of the data chunk payload.
type Track struct {
	ID           uint32
	Type         string // CUE track type, e.g. AUDIO or MODE1/2352
	Title        string
	Performer    string
	HasPregap    bool
	PreGapOffset uint32 // valid when HasPregap
	SoundOffset  uint32
	SoundLength  uint32
}

// IsData reports whether the CUE sheet declares a non-audio track.
func (t Track) IsData() bool {
	return t.Type != "" && !strings.EqualFold(t.Type, "AUDIO")
}

// checkCDDA verifies the Red Book format constants.
func checkCDDA(f wav.FormatChunk) error {
	switch {
	case f.BitsPerSample != cdda.BitsPerSample:
		return fmt.Errorf("%w: %d bits per sample, want %d", ErrNotCDDA, f.BitsPerSample, cdda.BitsPerSample)
	case f.Channels != cdda.Channels:
		return fmt.Errorf("%w: %d channels, want %d", ErrNotCDDA, f.Channels, cdda.Channels)
	case f.SampleRate != cdda.SampleRate:
		return fmt.Errorf("%w: %d Hz, want %d", ErrNotCDDA, f.SampleRate, cdda.SampleRate)
	case f.BytesPerSec != cdda.BytesPerSecond:
		return fmt.Errorf("%w: %d bytes per second, want %d", ErrNotCDDA, f.BytesPerSec, cdda.BytesPerSecond)
	}
	return nil
}

// Segment maps the CUE tracks onto byte ranges of the container's payload.
//
// A track with no index, or with a pregap but no following index, is
// skipped. So is a track starting at or past the end of the payload.
// Remaining tracks are ordered by sound offset; each runs up to the start
// of the next one and the last runs to the end of the payload.
func Segment(sheet *cue.Sheet, c *wav.Container, log logrus.FieldLogger) ([]Track, error) {
	if log == nil {
		log = discard()
	}
	if err := checkCDDA(c.Format); err != nil {
		return nil, err
	}

	var tracks []Track
	for _, ct := range sheet.Tracks {
		tlog := log.WithField("track", ct.ID)

		if len(ct.Indices) == 0 {
			tlog.Warn("track has no INDEX, skipping")
			continue
		}

		t := Track{ID: ct.ID, Type: ct.Type, Title: ct.Title, Performer: ct.Performer}
		start := ct.Indices[0]
		if pregap, ok := ct.Pregap(); ok {
			if len(ct.Indices) < 2 {
				tlog.Warn("track has a pregap but no start index, skipping")
				continue
			}
			t.PreGapOffset, t.HasPregap = pregap.Offset()
			if !t.HasPregap {
				tlog.WithField("pregap", pregap.MSF).Warn("pregap out of range, ignoring it")
			}
			start = ct.Indices[1]
		}

		offset, ok := start.Offset()
		if !ok || offset >= c.Data.Length {
			tlog.WithFields(logrus.Fields{
				"start":  start.MSF,
				"length": c.Data.Length,
			}).Warn("track starts past end of audio data, skipping")
			continue
		}
		t.SoundOffset = offset

		tracks = append(tracks, t)
	}

	if !slices.IsSortedFunc(tracks, byOffset) {
		log.Warn("CUE tracks are not in time order, sorting by offset")
		slices.SortStableFunc(tracks, byOffset)
	}

	lengths := assignLengths(tracks, c.Data.Length)

	out := tracks[:0]
	for i, t := range tracks {
		if lengths[i] == 0 {
			log.WithField("track", t.ID).Warn("track has zero length, skipping")
			continue
		}
		t.SoundLength = lengths[i]
		out = append(out, t)
	}

	return out, nil
}

func byOffset(a, b Track) int {
	switch {
	case a.SoundOffset < b.SoundOffset:
		return -1
	case a.SoundOffset > b.SoundOffset:
		return 1
	}
	return 0
}

// assignLengths returns the sound length of each track: the distance to the
// next track's offset, or to dataLength for the last one. Tracks must be in
// ascending offset order with every offset below dataLength.
func assignLengths(tracks []Track, dataLength uint32) []uint32 {
	lengths := make([]uint32, len(tracks))
	for i, t := range tracks {
		end := dataLength
		if i+1 < len(tracks) {
			end = tracks[i+1].SoundOffset
		}
		lengths[i] = end - t.SoundOffset
	}
	return lengths
}
