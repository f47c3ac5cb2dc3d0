// Package split cuts a CD image, one WAV file plus a CUE sheet of the same
// base name, into one WAV file per track.
//
// Splitting runs in two steps. Prepare opens and validates the image,
// finds and parses the CUE sheet and computes the byte range of every
// track; nothing is written. Execute then copies each range into its own
// file. A missing CUE sheet is not an error: the Plan reports a
// single-track image and Execute writes nothing.
package split

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/binaryphile/cd-split/internal/binio"
	"github.com/binaryphile/cd-split/internal/cdda"
	"github.com/binaryphile/cd-split/internal/cue"
	"github.com/binaryphile/cd-split/internal/musicbrainz"
	"github.com/binaryphile/cd-split/internal/naming"
	"github.com/binaryphile/cd-split/internal/tag"
	"github.com/binaryphile/cd-split/internal/wav"
)

// ErrNoCueSheet reports an image without a CUE sheet beside it.
var ErrNoCueSheet = errors.New("split: no CUE sheet found")

// Options configures a split.
type Options struct {
	Logger    logrus.FieldLogger
	Charset   string // text encoding of the CUE sheet, empty for UTF-8
	SafeNames bool   // shell-safe ASCII track filenames
	ID3       bool   // embed an ID3v2.4 tag chunk in every track

	// Override holds manual metadata. Its non-empty values win over the
	// CUE sheet.
	Override *musicbrainz.Release
	// Fallback holds looked-up metadata. It only fills values the CUE
	// sheet and Override leave empty.
	Fallback *musicbrainz.Release
	Cover    *tag.Picture
}

// DefaultOptions returns options that split with CUE titles as written
// and log through the standard logrus logger.
func DefaultOptions() Options {
	return Options{Logger: logrus.StandardLogger()}
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger == nil {
		return discard()
	}
	return o.Logger
}

// Plan is a validated image and the tracks to cut from it.
type Plan struct {
	Input      string
	CuePath    string
	Container  *wav.Container
	Sheet      *cue.Sheet // nil without a CUE sheet
	Tracks     []Track
	MultiTrack bool
}

// Result summarizes an Execute.
type Result struct {
	MultiTrack bool
	Written    []string
	Failed     []TrackError
}

// TrackError is a track that could not be written.
type TrackError struct {
	Index int // position in Plan.Tracks
	Track Track
	Path  string
	Err   error
}

func (e TrackError) Error() string {
	return fmt.Sprintf("track %02d (%s): %v", e.Track.ID, e.Path, e.Err)
}

func (e TrackError) Unwrap() error { return e.Err }

// CuePath returns the CUE sheet expected beside a WAV image: same base
// name, .cue extension.
func CuePath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".cue"
}

// Prepare validates the image at input and segments it by its CUE sheet.
// Errors opening or parsing either file abort; a missing CUE sheet does not.
// This is boundary code - performs file I/O.
func Prepare(input string, opts Options) (*Plan, error) {
	log := opts.logger().WithField("input", input)

	container, err := wav.ParseFile(input, log)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"channels":    container.Format.Channels,
		"sample_rate": container.Format.SampleRate,
		"bits":        container.Format.BitsPerSample,
		"length":      container.Data.Length,
	}).Debug("container parsed")

	plan := &Plan{Input: input, Container: container}

	cuePath := CuePath(input)
	sheet, err := cue.ParseFile(cuePath, cue.Options{Charset: opts.Charset, Logger: log})
	if errors.Is(err, os.ErrNotExist) {
		log.WithField("cue", cuePath).Info("no CUE sheet, image is a single track")
		return plan, nil
	}
	if err != nil {
		return nil, err
	}

	tracks, err := Segment(sheet, container, log)
	if err != nil {
		return nil, err
	}

	plan.CuePath = cuePath
	plan.Sheet = sheet
	plan.Tracks = tracks
	plan.MultiTrack = true
	return plan, nil
}

// TOC reconstructs the disc table of contents from the track layout.
func (p *Plan) TOC() cdda.TOC {
	spans := make([]cdda.Span, 0, len(p.Tracks))
	for _, t := range p.Tracks {
		spans = append(spans, cdda.Span{Num: int(t.ID), Offset: t.SoundOffset, Data: t.IsData()})
	}
	return cdda.BuildTOC(spans, p.Container.Data.Length)
}

// DiscID returns the MusicBrainz disc ID of the image.
func (p *Plan) DiscID() string { return cdda.CalculateDiscID(p.TOC()) }

// FreeDBID returns the FreeDB disc ID of the image.
func (p *Plan) FreeDBID() string { return cdda.CalculateFreeDBID(p.TOC()) }

// Filename returns the output name of the i-th track.
func (p *Plan) Filename(i int, opts Options) string {
	return naming.TrackFilename(p.Tracks[i].ID, p.TrackMeta(i, opts).Title, opts.SafeNames)
}

// Execute writes every planned track into outDir, which must exist.
// A track that fails is removed, recorded in Result.Failed and skipped;
// only failing to open the image aborts.
// This is boundary code - performs file I/O.
func (p *Plan) Execute(outDir string, opts Options) (Result, error) {
	res := Result{MultiTrack: p.MultiTrack}
	if !p.MultiTrack {
		return res, nil
	}

	log := opts.logger()

	src, err := binio.Open(p.Input, binary.LittleEndian)
	if err != nil {
		return res, fmt.Errorf("open wav: %w", err)
	}
	defer src.Close()

	for i, t := range p.Tracks {
		path := filepath.Join(outDir, p.Filename(i, opts))
		tlog := log.WithFields(logrus.Fields{"track": t.ID, "path": path})

		if err := p.writeTrack(src, path, i, opts); err != nil {
			tlog.WithError(err).Error("track not written")
			res.Failed = append(res.Failed, TrackError{Index: i, Track: t, Path: path, Err: err})
			continue
		}

		tlog.WithFields(logrus.Fields{
			"offset": t.SoundOffset,
			"length": t.SoundLength,
		}).Debug("track written")
		res.Written = append(res.Written, path)
	}

	return res, nil
}

// writeTrack re-seeks src to the track start and copies it out.
func (p *Plan) writeTrack(src *binio.Reader, path string, i int, opts Options) error {
	t := p.Tracks[i]

	var extra []wav.Chunk
	if opts.ID3 {
		data, err := tag.BuildTags(p.TrackMeta(i, opts)).Bytes()
		if err != nil {
			return err
		}
		extra = append(extra, wav.Chunk{ID: wav.TagID3, Data: data})
	}

	if _, err := src.Seek(p.Container.Data.Offset+int64(t.SoundOffset), binio.Begin); err != nil {
		return fmt.Errorf("seek track: %w", err)
	}

	w, err := wav.Create(path)
	if err != nil {
		return err
	}

	if err := w.WriteHeader(p.Container.Format, t.SoundLength, extra...); err != nil {
		return errors.Join(err, w.Abort())
	}
	if _, err := w.CopyPCM(src); err != nil {
		return errors.Join(err, w.Abort())
	}
	if err := w.Close(); err != nil {
		return errors.Join(err, os.Remove(path))
	}

	return nil
}

func discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
