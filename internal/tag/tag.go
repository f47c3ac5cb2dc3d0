// Package tag builds ID3v2.4 tags for split tracks. The serialized tag is
// embedded in the WAV file as an "id3 " chunk.
package tag

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/bogem/id3v2/v2"
)

// TrackMeta contains metadata for a track to be tagged
type TrackMeta struct {
	Artist      string
	AlbumArtist string // For compilations - empty means same as Artist
	Album       string
	Title       string
	TrackNum    int
	TrackTotal  int
	DiscNum     int // 0 = single disc
	DiscTotal   int // 0 = single disc
	Year        int
	Genre       string
	Compilation bool
	Cover       *Picture
}

// Picture is front cover art.
type Picture struct {
	Data     []byte
	MIMEType string
}

// TagSet contains the ID3 tags to be written
type TagSet struct {
	Artist      string
	AlbumArtist string
	Album       string
	Title       string
	TrackNum    int
	TrackTotal  int
	DiscNum     int
	DiscTotal   int
	Year        int
	Genre       string
	Compilation bool
	Cover       *Picture
}

// BuildTags creates a TagSet from track metadata.
// This is a pure function: TrackMeta → TagSet
// No I/O is performed - use Bytes() to serialize.
func BuildTags(meta TrackMeta) TagSet {
	albumArtist := meta.AlbumArtist
	if albumArtist == meta.Artist {
		albumArtist = ""
	}

	return TagSet{
		Artist:      meta.Artist,
		AlbumArtist: albumArtist,
		Album:       meta.Album,
		Title:       meta.Title,
		TrackNum:    meta.TrackNum,
		TrackTotal:  meta.TrackTotal,
		DiscNum:     meta.DiscNum,
		DiscTotal:   meta.DiscTotal,
		Year:        meta.Year,
		Genre:       meta.Genre,
		Compilation: meta.Compilation,
		Cover:       meta.Cover,
	}
}

// Bytes serializes the tags as a complete ID3v2.4 tag.
func (t TagSet) Bytes() ([]byte, error) {
	tag := id3v2.NewEmptyTag()
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetVersion(4)

	text := func(id, value string) {
		if value != "" {
			tag.AddTextFrame(id, id3v2.EncodingUTF8, value)
		}
	}

	text("TIT2", t.Title)
	text("TPE1", t.Artist)
	text("TALB", t.Album)
	text("TCON", t.Genre)

	if t.Year > 0 {
		tag.SetYear(strconv.Itoa(t.Year))
	}

	// Track number (format: N/Total)
	text("TRCK", fraction(t.TrackNum, t.TrackTotal))
	// Disc number (format: N/Total)
	text("TPOS", fraction(t.DiscNum, t.DiscTotal))

	text("TPE2", t.AlbumArtist)

	if t.Compilation {
		text("TCMP", "1")
	}

	if t.Cover != nil && len(t.Cover.Data) > 0 {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    t.Cover.MIMEType,
			PictureType: id3v2.PTFrontCover,
			Description: "Front cover",
			Picture:     t.Cover.Data,
		})
	}

	var buf bytes.Buffer
	if _, err := tag.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write id3 tag: %w", err)
	}
	return buf.Bytes(), nil
}

func fraction(n, total int) string {
	switch {
	case total > 0:
		return fmt.Sprintf("%d/%d", n, total)
	case n > 0:
		return strconv.Itoa(n)
	default:
		return ""
	}
}
