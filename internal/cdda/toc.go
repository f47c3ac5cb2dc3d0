package cdda

// TrackType indicates whether a track is audio or data
type TrackType int

const (
	TrackTypeAudio TrackType = iota
	TrackTypeData
)

// Track represents a single track in a reconstructed Table of Contents
type Track struct {
	Num  int
	LBA  int
	Type TrackType
}

// IsAudio returns true if this is an audio track
func (t Track) IsAudio() bool {
	return t.Type == TrackTypeAudio
}

// TOC represents a CD Table of Contents
type TOC struct {
	FirstTrack int
	LastTrack  int
	LeadoutLBA int
	Tracks     []Track
}

// Span locates one track inside a CD image's PCM payload.
type Span struct {
	Num    int
	Offset uint32 // byte offset of the track start within the payload
	Data   bool
}

// BuildTOC reconstructs the disc TOC a CD image was ripped from.
// This is a pure function: (spans, payload length) → TOC struct.
//
// Image offsets start at the first audible sample, so every LBA is shifted
// by the 150-frame lead-in a pressed disc carries, matching what a drive
// reports in READ TOC. Spans must be in ascending offset order.
func BuildTOC(spans []Span, dataLength uint32) TOC {
	if len(spans) == 0 {
		return TOC{}
	}

	toc := TOC{
		FirstTrack: spans[0].Num,
		LastTrack:  spans[len(spans)-1].Num,
		LeadoutLBA: int(dataLength/BytesPerFrame) + LeadInFrames,
	}

	for _, s := range spans {
		trackType := TrackTypeAudio
		if s.Data {
			trackType = TrackTypeData
		}
		toc.Tracks = append(toc.Tracks, Track{
			Num:  s.Num,
			LBA:  int(s.Offset/BytesPerFrame) + LeadInFrames,
			Type: trackType,
		})
	}

	return toc
}

// Length returns the length in frames of the i-th track.
func (toc TOC) Length(i int) int {
	if i+1 < len(toc.Tracks) {
		return toc.Tracks[i+1].LBA - toc.Tracks[i].LBA
	}
	return toc.LeadoutLBA - toc.Tracks[i].LBA
}
