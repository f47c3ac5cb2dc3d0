// Package cue parses CUE sheets describing the track layout of a single
// continuous CD image.
//
// Only the commands needed to split an image are interpreted (REM, TITLE,
// PERFORMER, FILE, TRACK, INDEX). Anything else is kept as a Directive and
// otherwise ignored; the parser never fails on odd content, only on I/O.
package cue

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/binaryphile/cd-split/internal/cdda"
)

// maxLineSize bounds a single CUE line.
const maxLineSize = 1 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options configures parsing.
type Options struct {
	// Charset names the text encoding of the sheet (any WHATWG label such as
	// "shift_jis" or "windows-1252"). Empty means UTF-8.
	Charset string
	Logger  logrus.FieldLogger
}

// ParseFile reads and parses the CUE sheet at path.
func ParseFile(path string, opts Options) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cue: %w", err)
	}
	defer f.Close()

	sheet, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("parse cue %s: %w", path, err)
	}
	return sheet, nil
}

// Parse reads a whole CUE sheet from r.
func Parse(r io.Reader, opts Options) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read cue: %w", err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)

	if opts.Charset != "" {
		data, err = decode(data, opts.Charset)
		if err != nil {
			return nil, err
		}
	}

	p := parser{
		sheet: &Sheet{},
		log:   opts.Logger,
	}
	if p.log == nil {
		p.log = discard()
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)

	for n := 1; sc.Scan(); n++ {
		p.line(n, splitFields(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read cue: %w", err)
	}

	return p.sheet, nil
}

// decode converts data from the named charset to UTF-8.
func decode(data []byte, charset string) ([]byte, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("cue charset %q: %w", charset, err)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode cue as %s: %w", charset, err)
	}
	return bytes.TrimPrefix(out, utf8BOM), nil
}

func discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// parser holds the state carried from line to line.
type parser struct {
	sheet      *Sheet
	headerDone bool // a FILE line was seen
	badTrack   bool // the last TRACK line was rejected
	log        logrus.FieldLogger
}

// current returns the most recently declared track, or nil.
func (p *parser) current() *Track {
	if len(p.sheet.Tracks) == 0 {
		return nil
	}
	return &p.sheet.Tracks[len(p.sheet.Tracks)-1]
}

// inTrack reports whether TITLE/PERFORMER/REM belong to a track.
func (p *parser) inTrack() bool {
	return p.headerDone && p.current() != nil
}

func (p *parser) line(n int, fields []string) {
	if len(fields) < 2 {
		return
	}
	log := p.log.WithField("line", n)

	cmd := ParseCommand(fields[0])
	if p.badTrack && cmd.inTrackBody() {
		log.WithField("command", fields[0]).Debug("ignoring line of rejected TRACK")
		return
	}

	switch cmd {
	case CommandRem:
		rem := parseRemark(fields)
		if p.inTrack() {
			t := p.current()
			t.Remarks = append(t.Remarks, rem)
		} else {
			p.sheet.Remarks = append(p.sheet.Remarks, rem)
		}

	case CommandTitle:
		value := joinValue(fields[1:])
		if p.inTrack() {
			p.current().Title = value
		} else {
			p.sheet.Title = value
		}

	case CommandPerformer:
		value := joinValue(fields[1:])
		if p.inTrack() {
			p.current().Performer = value
		} else {
			p.sheet.Performer = value
		}

	case CommandFile:
		p.headerDone = true
		p.sheet.FileName = fields[1]
		if len(fields) > 2 {
			p.sheet.FileType = fields[2]
		}

	case CommandTrack:
		id, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			log.WithField("value", fields[1]).Warn("skipping TRACK with invalid number")
			p.badTrack = true
			return
		}
		p.badTrack = false
		track := Track{ID: uint32(id)}
		if len(fields) > 2 {
			track.Type = fields[2]
		}
		p.sheet.Tracks = append(p.sheet.Tracks, track)

	case CommandIndex:
		t := p.current()
		if t == nil {
			log.Warn("skipping INDEX before any TRACK")
			return
		}
		num, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			log.WithField("value", fields[1]).Warn("skipping INDEX with invalid number")
			return
		}
		idx := Index{Number: uint32(num)}
		if len(fields) > 2 {
			msf, ok := ParseTime(fields[2])
			if !ok {
				log.WithField("value", fields[2]).Warn("malformed INDEX time, using 00:00:00")
			}
			idx.MSF = msf
		}
		t.Indices = append(t.Indices, idx)

	default:
		p.sheet.Unknown = append(p.sheet.Unknown, Directive{Line: n, Token: fields[0], Fields: fields[1:]})
		log.WithField("command", fields[0]).Debug("ignoring unrecognized command")
	}
}

func parseRemark(fields []string) Remark {
	name := fields[1]
	typ, ok := remarkNames[name]
	if !ok {
		typ = RemarkUnknown
	}
	return Remark{
		Type:  typ,
		Name:  name,
		Value: joinValue(fields[2:]),
	}
}

// joinValue rebuilds a value that was written without quotes.
func joinValue(fields []string) string {
	return strings.Join(fields, " ")
}

// ParseTime parses an MM:SS:FF field. Anything other than exactly three
// non-negative colon-separated integers yields the zero address and false.
func ParseTime(s string) (cdda.MSF, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return cdda.MSF{}, false
	}

	var v [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return cdda.MSF{}, false
		}
		v[i] = n
	}

	return cdda.MSF{Minutes: v[0], Seconds: v[1], Frames: v[2]}, true
}
