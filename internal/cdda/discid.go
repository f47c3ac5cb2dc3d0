package cdda

import (
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strings"
)

// musicBrainzEncoding is standard base64 with the URL-safe substitutions
// MusicBrainz uses: + → . , / → _ , = → -
var musicBrainzEncoding = strings.NewReplacer("+", ".", "/", "_", "=", "-")

// CalculateDiscID computes the MusicBrainz disc ID from a TOC.
// This is a pure function: TOC struct → 28-char disc ID string.
//
// Algorithm:
// 1. Format first/last track and 100 offsets (leadout, then tracks 1-99) as hex
// 2. SHA-1 hash the string
// 3. Base64 encode with MusicBrainz URL-safe substitutions
func CalculateDiscID(toc TOC) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%02X%02X", toc.FirstTrack, toc.LastTrack)

	offsets := make([]int, 100)
	offsets[0] = toc.LeadoutLBA
	for _, track := range toc.Tracks {
		if track.Num >= 1 && track.Num <= 99 {
			offsets[track.Num] = track.LBA
		}
	}
	for _, off := range offsets {
		fmt.Fprintf(&sb, "%08X", off)
	}

	hash := sha1.Sum([]byte(sb.String()))
	return musicBrainzEncoding.Replace(base64.StdEncoding.EncodeToString(hash[:]))
}

// CalculateFreeDBID computes the 8-hex-digit CDDB/FreeDB disc ID, the value
// rippers write into CUE sheets as REM DISCID.
// This is a pure function: TOC struct → disc ID string.
func CalculateFreeDBID(toc TOC) string {
	if len(toc.Tracks) == 0 {
		return ""
	}

	n := 0
	for _, track := range toc.Tracks {
		n += digitSum(track.LBA / FramesPerSecond)
	}
	total := toc.LeadoutLBA/FramesPerSecond - toc.Tracks[0].LBA/FramesPerSecond

	id := uint32(n%0xff)<<24 | uint32(total)<<8 | uint32(len(toc.Tracks))
	return fmt.Sprintf("%08x", id)
}

func digitSum(n int) int {
	sum := 0
	for n > 0 {
		sum += n % 10
		n /= 10
	}
	return sum
}
