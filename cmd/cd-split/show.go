package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/binaryphile/cd-split/internal/cdda"
	"github.com/binaryphile/cd-split/internal/cue"
	"github.com/binaryphile/cd-split/internal/split"
)

func runShow(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(stderr)

	input := fs.String("i", "", "Input WAV image")
	fs.StringVar(input, "input-file", "", "Input WAV image")

	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	charset := fs.String("cue-charset", "", "CUE sheet text encoding")

	verbose := fs.Bool("v", false, "Verbose output")
	fs.BoolVar(verbose, "verbose", false, "Verbose output")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s show -i <image.wav> [--json]\n\n", appName)
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if *input == "" {
		fs.Usage()
		return 1
	}

	opts := split.DefaultOptions()
	opts.Logger = newLogger(stderr, *verbose)
	opts.Charset = *charset

	plan, err := split.Prepare(*input, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	r := buildReport(plan)
	if *asJSON {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, string(data))
		return 0
	}

	printReport(stdout, r)
	return 0
}

type reportFormat struct {
	Format        uint16 `json:"format"`
	Channels      uint16 `json:"channels"`
	SampleRate    uint32 `json:"sample_rate"`
	BytesPerSec   uint32 `json:"bytes_per_sec"`
	BlockSize     uint16 `json:"block_size"`
	BitsPerSample uint16 `json:"bits_per_sample"`
	DataOffset    int64  `json:"data_offset"`
	DataLength    uint32 `json:"data_length"`
}

type reportIndex struct {
	Number uint32 `json:"number"`
	Time   string `json:"time"`
}

// reportCueTrack is a TRACK block as written, including tracks the
// layout skips.
type reportCueTrack struct {
	Num       uint32        `json:"num"`
	Type      string        `json:"type,omitempty"`
	Title     string        `json:"title,omitempty"`
	Performer string        `json:"performer,omitempty"`
	Indices   []reportIndex `json:"indices"`
}

type reportTrack struct {
	Num       uint32 `json:"num"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Performer string `json:"performer,omitempty"`
	PreGap    string `json:"pregap,omitempty"`
	Start     string `json:"start"`
	Offset    uint32 `json:"offset"`
	Length    uint32 `json:"length"`
	Frames    int    `json:"frames"`
	LBA       int    `json:"lba"`
}

type reportRemark struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type report struct {
	Input      string           `json:"input"`
	Cue        string           `json:"cue,omitempty"`
	Format     reportFormat     `json:"format"`
	Duration   string           `json:"duration"`
	Performer  string           `json:"performer,omitempty"`
	Title      string           `json:"title,omitempty"`
	Remarks    []reportRemark   `json:"remarks,omitempty"`
	CueTracks  []reportCueTrack `json:"cue_tracks,omitempty"`
	Tracks     []reportTrack    `json:"tracks,omitempty"`
	LeadoutLBA int              `json:"leadout_lba,omitempty"`
	DiscID     string           `json:"musicbrainz_discid,omitempty"`
	FreeDBID   string           `json:"freedb_discid,omitempty"`
	CueDiscID  string           `json:"cue_discid,omitempty"`
}

// buildReport flattens a plan for display.
// This is a pure function: Plan → report
func buildReport(plan *split.Plan) report {
	c := plan.Container
	r := report{
		Input: plan.Input,
		Cue:   plan.CuePath,
		Format: reportFormat{
			Format:        uint16(c.Format.Format),
			Channels:      c.Format.Channels,
			SampleRate:    c.Format.SampleRate,
			BytesPerSec:   c.Format.BytesPerSec,
			BlockSize:     c.Format.BlockSize,
			BitsPerSample: c.Format.BitsPerSample,
			DataOffset:    c.Data.Offset,
			DataLength:    c.Data.Length,
		},
		Duration: c.Duration().String(),
	}

	if !plan.MultiTrack {
		return r
	}

	s := plan.Sheet
	r.Performer, r.Title = s.Performer, s.Title
	for _, rem := range s.Remarks {
		r.Remarks = append(r.Remarks, reportRemark{Name: rem.Name, Value: rem.Value})
	}
	r.CueDiscID, _ = s.Remark(cue.RemarkDiscID)

	for _, ct := range s.Tracks {
		rc := reportCueTrack{
			Num:       ct.ID,
			Type:      ct.Type,
			Title:     ct.Title,
			Performer: ct.Performer,
			Indices:   []reportIndex{},
		}
		for _, idx := range ct.Indices {
			rc.Indices = append(rc.Indices, reportIndex{Number: idx.Number, Time: idx.MSF.String()})
		}
		r.CueTracks = append(r.CueTracks, rc)
	}

	toc := plan.TOC()
	for i, t := range plan.Tracks {
		rt := reportTrack{
			Num:       t.ID,
			Type:      "audio",
			Title:     t.Title,
			Performer: t.Performer,
			Start:     cdda.MSFFromBytes(t.SoundOffset).String(),
			Offset:    t.SoundOffset,
			Length:    t.SoundLength,
			Frames:    toc.Length(i),
			LBA:       toc.Tracks[i].LBA,
		}
		if !toc.Tracks[i].IsAudio() {
			rt.Type = "data"
		}
		if t.HasPregap {
			rt.PreGap = cdda.MSFFromBytes(t.PreGapOffset).String()
		}
		r.Tracks = append(r.Tracks, rt)
	}
	r.LeadoutLBA = toc.LeadoutLBA
	r.DiscID = cdda.CalculateDiscID(toc)
	r.FreeDBID = cdda.CalculateFreeDBID(toc)

	return r
}

func printReport(w io.Writer, r report) {
	f := r.Format
	fmt.Fprintf(w, "Input: %s\n", r.Input)
	fmt.Fprintf(w, "Format: %d Hz, %d bit, %d channel(s), block %d, %d bytes/s (code 0x%04x)\n",
		f.SampleRate, f.BitsPerSample, f.Channels, f.BlockSize, f.BytesPerSec, f.Format)
	fmt.Fprintf(w, "Data: %d bytes at offset %d (%s)\n", f.DataLength, f.DataOffset, r.Duration)

	if r.Cue == "" {
		fmt.Fprintln(w, "\nNo CUE sheet: single track image")
		return
	}

	fmt.Fprintf(w, "\nCUE sheet: %s\n", r.Cue)
	if r.Performer != "" {
		fmt.Fprintf(w, "Performer: %s\n", r.Performer)
	}
	if r.Title != "" {
		fmt.Fprintf(w, "Title: %s\n", r.Title)
	}
	for _, rem := range r.Remarks {
		fmt.Fprintf(w, "REM %s: %s\n", rem.Name, rem.Value)
	}

	fmt.Fprintf(w, "\nCUE tracks:\n")
	for _, ct := range r.CueTracks {
		fmt.Fprintf(w, "  TRACK %02d %s", ct.Num, ct.Type)
		if ct.Title != "" {
			fmt.Fprintf(w, "  %q", ct.Title)
		}
		if ct.Performer != "" {
			fmt.Fprintf(w, " by %s", ct.Performer)
		}
		fmt.Fprintln(w)
		if len(ct.Indices) == 0 {
			fmt.Fprintln(w, "    (no INDEX)")
		}
		for _, idx := range ct.Indices {
			fmt.Fprintf(w, "    INDEX %02d %s\n", idx.Number, idx.Time)
		}
	}

	fmt.Fprintf(w, "\nLayout:\n")
	fmt.Fprintf(w, "%6s %5s %9s %9s %12s %12s %7s %8s  %s\n", "Track", "Type", "Pregap", "Start", "Offset", "Length", "Frames", "LBA", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, t := range r.Tracks {
		pregap := t.PreGap
		if pregap == "" {
			pregap = "-"
		}
		fmt.Fprintf(w, "%6d %5s %9s %9s %12d %12d %7d %8d  %s\n",
			t.Num, t.Type, pregap, t.Start, t.Offset, t.Length, t.Frames, t.LBA, t.Title)
	}
	fmt.Fprintf(w, "%6s %5s %9s %9s %12s %12s %7s %8d\n", "Lead-out", "-", "-", "-", "-", "-", "-", r.LeadoutLBA)

	fmt.Fprintf(w, "\nMusicBrainz disc ID: %s\n", r.DiscID)
	fmt.Fprintf(w, "FreeDB disc ID: %s", r.FreeDBID)
	switch {
	case r.CueDiscID == "":
		fmt.Fprintln(w)
	case strings.EqualFold(r.CueDiscID, r.FreeDBID):
		fmt.Fprintln(w, " (matches REM DISCID)")
	default:
		fmt.Fprintf(w, " (REM DISCID is %s)\n", r.CueDiscID)
	}
}
