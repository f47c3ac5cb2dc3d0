package split

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	gowav "github.com/go-audio/wav"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binaryphile/cd-split/internal/cdda"
	"github.com/binaryphile/cd-split/internal/musicbrainz"
	"github.com/binaryphile/cd-split/internal/wav"
)

const threeTrackCue = `REM GENRE Rock
REM DATE 1973-03-01
PERFORMER "Pink Floyd"
TITLE "Dark Side"
FILE "album.wav" WAVE
  TRACK 01 AUDIO
    TITLE "Speak to Me"
    INDEX 01 00:00:00
  TRACK 02 AUDIO
    TITLE "Breathe"
    INDEX 01 00:00:10
  TRACK 03 AUDIO
    TITLE "On the Run"
    INDEX 01 00:00:30
`

// payload returns n CD frames of non-repeating PCM.
func payload(frames uint32) []byte {
	b := make([]byte, cdda.Bytes(frames))
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

// writeImage writes album.wav (and album.cue unless cueText is empty) into
// a fresh directory and returns the WAV path.
func writeImage(t *testing.T, format wav.FormatChunk, pcm []byte, cueText string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "album.wav")

	w, err := wav.Create(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader(format, uint32(len(pcm))))
	_, err = w.CopyPCM(bytes.NewReader(pcm))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	if cueText != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "album.cue"), []byte(cueText), 0644))
	}
	return path
}

// readPCM returns the data chunk payload of a produced track file.
func readPCM(t *testing.T, path string) []byte {
	t.Helper()
	c, err := wav.ParseFile(path, nil)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return b[c.Data.Offset : c.Data.Offset+int64(c.Data.Length)]
}

func split(t *testing.T, input string, opts Options) (Result, string) {
	t.Helper()
	plan, err := Prepare(input, opts)
	require.NoError(t, err)

	out := t.TempDir()
	res, err := plan.Execute(out, opts)
	require.NoError(t, err)
	return res, out
}

func TestCuePath(t *testing.T) {
	assert.Equal(t, "/music/album.cue", CuePath("/music/album.wav"))
	assert.Equal(t, "/music/album.cue", CuePath("/music/album.WAV"))
	assert.Equal(t, "a.b.cue", CuePath("a.b.wav"))
	assert.Equal(t, "noext.cue", CuePath("noext"))
}

func TestSplit_RoundTrip(t *testing.T) {
	pcm := payload(45)
	input := writeImage(t, cdFormat, pcm, threeTrackCue)

	res, out := split(t, input, Options{})
	assert.True(t, res.MultiTrack)
	assert.Empty(t, res.Failed)
	require.Equal(t, []string{
		filepath.Join(out, "01_Speak to Me.wav"),
		filepath.Join(out, "02_Breathe.wav"),
		filepath.Join(out, "03_On the Run.wav"),
	}, res.Written)

	var joined []byte
	for _, path := range res.Written {
		joined = append(joined, readPCM(t, path)...)
	}
	assert.Equal(t, pcm, joined)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestSplit_OutputDecodes(t *testing.T) {
	input := writeImage(t, cdFormat, payload(45), threeTrackCue)
	res, _ := split(t, input, Options{})

	for _, path := range res.Written {
		f, err := os.Open(path)
		require.NoError(t, err)

		d := gowav.NewDecoder(f)
		assert.True(t, d.IsValidFile(), path)
		assert.Equal(t, uint32(44100), d.SampleRate)
		assert.Equal(t, uint16(2), d.NumChans)
		assert.Equal(t, uint16(16), d.BitDepth)
		f.Close()
	}
}

func TestSplit_PregapExcluded(t *testing.T) {
	pcm := payload(20)
	input := writeImage(t, cdFormat, pcm, `FILE "album.wav" WAVE
TRACK 01 AUDIO
TITLE "A"
INDEX 01 00:00:00
TRACK 02 AUDIO
TITLE "B"
INDEX 00 00:00:08
INDEX 01 00:00:10
`)

	res, _ := split(t, input, Options{})
	require.Len(t, res.Written, 2)

	assert.Equal(t, pcm[cdda.Bytes(10):], readPCM(t, res.Written[1]))
	assert.Equal(t, pcm[:cdda.Bytes(10)], readPCM(t, res.Written[0]))
}

func TestSplit_PregapOnlyTrackSkipped(t *testing.T) {
	pcm := payload(30)
	input := writeImage(t, cdFormat, pcm, `FILE "album.wav" WAVE
TRACK 01 AUDIO
TITLE "A"
INDEX 01 00:00:00
TRACK 02 AUDIO
TITLE "B"
INDEX 00 00:00:10
TRACK 03 AUDIO
TITLE "C"
INDEX 01 00:00:20
`)

	res, out := split(t, input, Options{})
	require.Equal(t, []string{
		filepath.Join(out, "01_A.wav"),
		filepath.Join(out, "03_C.wav"),
	}, res.Written)

	assert.Equal(t, pcm[:cdda.Bytes(20)], readPCM(t, res.Written[0]))
	assert.Equal(t, pcm[cdda.Bytes(20):], readPCM(t, res.Written[1]))
}

func TestSplit_NoCueSheet(t *testing.T) {
	input := writeImage(t, cdFormat, payload(10), "")

	plan, err := Prepare(input, Options{})
	require.NoError(t, err)
	assert.False(t, plan.MultiTrack)
	assert.Nil(t, plan.Sheet)
	assert.Empty(t, plan.Tracks)

	out := t.TempDir()
	res, err := plan.Execute(out, Options{})
	require.NoError(t, err)
	assert.False(t, res.MultiTrack)
	assert.Empty(t, res.Written)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSplit_NoCueSheetStillValidates(t *testing.T) {
	bad := cdFormat
	bad.BlockSize = 3
	input := writeImage(t, bad, payload(10), "")

	_, err := Prepare(input, Options{})
	assert.ErrorIs(t, err, wav.ErrBlockSize)
}

func TestSplit_BlockSizeMismatch(t *testing.T) {
	bad := cdFormat
	bad.BlockSize = 3
	input := writeImage(t, bad, payload(45), threeTrackCue)

	plan, err := Prepare(input, Options{})
	assert.ErrorIs(t, err, wav.ErrBlockSize)
	assert.Nil(t, plan)

	entries, err := os.ReadDir(filepath.Dir(input))
	require.NoError(t, err)
	assert.Len(t, entries, 2) // album.wav and album.cue only
}

func TestSplit_NotCDDA(t *testing.T) {
	mono := wav.FormatChunk{Length: 16, Format: wav.FormatPCM, Channels: 1, SampleRate: 44100, BytesPerSec: 88200, BlockSize: 2, BitsPerSample: 16}
	input := writeImage(t, mono, payload(45), threeTrackCue)

	_, err := Prepare(input, Options{})
	assert.ErrorIs(t, err, ErrNotCDDA)
}

func TestSplit_MissingInput(t *testing.T) {
	_, err := Prepare(filepath.Join(t.TempDir(), "none.wav"), Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSplit_TrackFailureIsolated(t *testing.T) {
	logger, hook := test.NewNullLogger()
	input := writeImage(t, cdFormat, payload(45), threeTrackCue)
	opts := Options{Logger: logger}

	plan, err := Prepare(input, opts)
	require.NoError(t, err)

	out := t.TempDir()
	// a directory in the way of track 2
	require.NoError(t, os.Mkdir(filepath.Join(out, "02_Breathe.wav"), 0755))

	res, err := plan.Execute(out, opts)
	require.NoError(t, err)

	assert.Len(t, res.Written, 2)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, 1, res.Failed[0].Index)
	assert.Equal(t, uint32(2), res.Failed[0].Track.ID)
	assert.Contains(t, res.Failed[0].Error(), "track 02")

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "track not written", hook.LastEntry().Message)
}

func TestSplit_SafeNames(t *testing.T) {
	input := writeImage(t, cdFormat, payload(45), threeTrackCue)
	res, out := split(t, input, Options{SafeNames: true})

	assert.Equal(t, []string{
		filepath.Join(out, "01_Speak_to_Me.wav"),
		filepath.Join(out, "02_Breathe.wav"),
		filepath.Join(out, "03_On_the_Run.wav"),
	}, res.Written)
}

func TestSplit_ID3Chunk(t *testing.T) {
	input := writeImage(t, cdFormat, payload(45), threeTrackCue)
	res, _ := split(t, input, Options{ID3: true})
	require.Len(t, res.Written, 3)

	c, err := wav.ParseFile(res.Written[1], nil)
	require.NoError(t, err)
	assert.Equal(t, cdda.Bytes(20), c.Data.Length)
	require.Len(t, c.Extra, 1)
	assert.Equal(t, wav.TagID3, c.Extra[0].ID)

	b, err := os.ReadFile(res.Written[1])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b[c.Extra[0].Offset:], []byte("ID3")))
}

func TestSplit_OverrideNames(t *testing.T) {
	input := writeImage(t, cdFormat, payload(45), threeTrackCue)
	override := &musicbrainz.Release{Tracks: []musicbrainz.Track{{Num: 2, Title: "Breathe (In the Air)"}}}

	res, out := split(t, input, Options{Override: override})
	assert.Contains(t, res.Written, filepath.Join(out, "02_Breathe (In the Air).wav"))
}

func TestPlan_TOC(t *testing.T) {
	input := writeImage(t, cdFormat, payload(45), threeTrackCue)
	plan, err := Prepare(input, Options{})
	require.NoError(t, err)

	toc := plan.TOC()
	assert.Equal(t, 1, toc.FirstTrack)
	assert.Equal(t, 3, toc.LastTrack)
	assert.Equal(t, 150+45, toc.LeadoutLBA)
	require.Len(t, toc.Tracks, 3)
	assert.Equal(t, []int{150, 160, 180}, []int{toc.Tracks[0].LBA, toc.Tracks[1].LBA, toc.Tracks[2].LBA})

	assert.Len(t, plan.DiscID(), 28)
	assert.Len(t, plan.FreeDBID(), 8)
}

func TestPlan_TOCMarksDataTracks(t *testing.T) {
	input := writeImage(t, cdFormat, payload(30), `FILE "album.wav" WAVE
TRACK 01 AUDIO
INDEX 01 00:00:00
TRACK 02 MODE1/2352
INDEX 01 00:00:20
`)
	plan, err := Prepare(input, Options{})
	require.NoError(t, err)
	require.Len(t, plan.Tracks, 2)
	assert.Equal(t, "MODE1/2352", plan.Tracks[1].Type)

	toc := plan.TOC()
	assert.True(t, toc.Tracks[0].IsAudio())
	assert.False(t, toc.Tracks[1].IsAudio())
	assert.Equal(t, cdda.TrackTypeData, toc.Tracks[1].Type)
}
