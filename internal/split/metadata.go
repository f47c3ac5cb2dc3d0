package split

import (
	"strconv"

	"github.com/binaryphile/cd-split/internal/cue"
	"github.com/binaryphile/cd-split/internal/musicbrainz"
	"github.com/binaryphile/cd-split/internal/tag"
)

// TrackMeta resolves the metadata of the i-th track. Each value comes from
// the first source that has it: Override, the CUE sheet, then Fallback.
// This is a pure function.
func (p *Plan) TrackMeta(i int, opts Options) tag.TrackMeta {
	t := p.Tracks[i]
	num := int(t.ID)

	over, overTrack := releaseTrack(opts.Override, num)
	fall, fallTrack := releaseTrack(opts.Fallback, num)

	var sheet cue.Sheet
	if p.Sheet != nil {
		sheet = *p.Sheet
	}
	genre, _ := sheet.Remark(cue.RemarkGenre)
	date, _ := sheet.Remark(cue.RemarkDate)

	albumArtist := firstString(over.Artist, sheet.Performer, fall.Artist)

	meta := tag.TrackMeta{
		Title:       firstString(overTrack.Title, t.Title, fallTrack.Title),
		Artist:      firstString(overTrack.Artist, t.Performer, fallTrack.Artist, albumArtist),
		AlbumArtist: albumArtist,
		Album:       firstString(over.Title, sheet.Title, fall.Title),
		Genre:       firstString(over.Genre, genre, fall.Genre),
		Year:        firstInt(over.Year, parseYear(date), fall.Year),
		TrackNum:    num,
		TrackTotal:  len(p.Tracks),
		DiscNum:     firstInt(over.DiscNum, fall.DiscNum),
		DiscTotal:   firstInt(over.DiscCount, fall.DiscCount),
		Compilation: over.Compilation || fall.Compilation,
		Cover:       opts.Cover,
	}
	if meta.DiscTotal <= 1 {
		meta.DiscNum, meta.DiscTotal = 0, 0
	}

	return meta
}

func releaseTrack(r *musicbrainz.Release, num int) (musicbrainz.Release, musicbrainz.Track) {
	if r == nil {
		return musicbrainz.Release{}, musicbrainz.Track{}
	}
	t, _ := r.Track(num)
	return *r, t
}

// parseYear reads the leading year of a REM DATE value such as "1973" or
// "1973-03-01".
func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstInt(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
