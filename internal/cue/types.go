package cue

import (
	"github.com/binaryphile/cd-split/internal/cdda"
)

// Sheet is a parsed CUE sheet.
type Sheet struct {
	Performer string
	Title     string
	FileName  string // audio file named by the FILE command
	FileType  string // e.g. WAVE, BINARY
	Tracks    []Track
	Remarks   []Remark
	Unknown   []Directive // lines whose command is not understood
}

// Track is one TRACK block.
type Track struct {
	ID        uint32
	Type      string // e.g. AUDIO
	Title     string
	Performer string
	Indices   []Index  // file order, not sorted by number
	Remarks   []Remark // REM lines after this TRACK and before the next
}

// Index is an INDEX line. Number 0 marks the pregap, 1 the track start.
type Index struct {
	Number uint32
	cdda.MSF
}

// IsPregap reports whether the index marks a pregap.
func (i Index) IsPregap() bool {
	return i.Number == 0
}

// Pregap returns the first INDEX 00 of the track, if any.
func (t Track) Pregap() (Index, bool) {
	for _, idx := range t.Indices {
		if idx.IsPregap() {
			return idx, true
		}
	}
	return Index{}, false
}

// Remark returns the value of the first remark of the given type.
func (s *Sheet) Remark(typ RemarkType) (string, bool) {
	for _, r := range s.Remarks {
		if r.Type == typ {
			return r.Value, true
		}
	}
	return "", false
}

// RemarkType classifies REM lines.
type RemarkType int

const (
	RemarkUnknown RemarkType = iota
	RemarkGenre
	RemarkDate
	RemarkDiscID
	RemarkComment
	RemarkComposer
)

var remarkNames = map[string]RemarkType{
	"GENRE":    RemarkGenre,
	"DATE":     RemarkDate,
	"DISCID":   RemarkDiscID,
	"COMMENT":  RemarkComment,
	"COMPOSER": RemarkComposer,
}

func (t RemarkType) String() string {
	for name, typ := range remarkNames {
		if typ == t {
			return name
		}
	}
	return "UNKNOWN"
}

// Remark is a REM line. Name keeps the literal subtype so unknown remarks
// such as REM REPLAYGAIN_ALBUM_GAIN survive parsing.
type Remark struct {
	Type  RemarkType
	Name  string
	Value string
}

// Command is the closed set of CUE commands the parser acts on.
type Command int

const (
	CommandUnknown Command = iota
	CommandRem
	CommandTitle
	CommandPerformer
	CommandFile
	CommandTrack
	CommandIndex
)

func (c Command) String() string {
	switch c {
	case CommandRem:
		return "REM"
	case CommandTitle:
		return "TITLE"
	case CommandPerformer:
		return "PERFORMER"
	case CommandFile:
		return "FILE"
	case CommandTrack:
		return "TRACK"
	case CommandIndex:
		return "INDEX"
	default:
		return "UNKNOWN"
	}
}

// ParseCommand maps the first field of a line to a Command.
func ParseCommand(token string) Command {
	switch token {
	case "REM":
		return CommandRem
	case "TITLE":
		return CommandTitle
	case "PERFORMER":
		return CommandPerformer
	case "FILE":
		return CommandFile
	case "TRACK":
		return CommandTrack
	case "INDEX":
		return CommandIndex
	default:
		return CommandUnknown
	}
}

// inTrackBody reports whether c attaches to the enclosing TRACK.
func (c Command) inTrackBody() bool {
	switch c {
	case CommandRem, CommandTitle, CommandPerformer, CommandIndex:
		return true
	}
	return false
}

// Directive is a tokenized line whose command was not recognized, kept
// verbatim (e.g. CATALOG, FLAGS, ISRC, SONGWRITER).
type Directive struct {
	Line   int
	Token  string
	Fields []string
}
