// Package naming builds output filenames for split tracks.
package naming

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TrackFilename creates the output filename for one track.
// This is a pure function: (id, title, safe) → filename
//
// Format: NN_Title.wav
//
// By default the title is kept as written in the CUE sheet; only the
// characters no filesystem accepts in a name (/ \ NUL) become underscores.
// With safe set, the title goes through the shell-safe ASCII sanitizer:
// - Non-ASCII → normalized to ASCII equivalents (ō→o, é→e)
// - Spaces and shell metacharacters → underscores
// - Quotes (' " `) → removed
// - Multiple consecutive underscores → collapsed, leading/trailing trimmed
func TrackFilename(id uint32, title string, safe bool) string {
	if safe {
		title = sanitize(title)
	} else {
		title = pathSafe(title)
	}
	return fmt.Sprintf("%02d_%s.wav", id, title)
}

// pathSafe replaces only the characters that cannot appear in a filename.
func pathSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, s)
}

// sanitize prepares a string for use in a filename.
// Replaces characters that are illegal or require shell quoting.
// Normalizes non-ASCII characters to ASCII equivalents (ō→o, é→e, etc.).
// Collapses multiple consecutive underscores to a single underscore.
func sanitize(s string) string {
	s = normalizeToASCII(s)

	var b strings.Builder
	b.Grow(len(s))

	lastWasUnderscore := false
	for _, r := range s {
		switch r {
		case '\'', '"', '`':
			// removed entirely

		case ' ', '\t',
			'/', '\\', // filesystem-illegal
			'$', '!', // shell expansion
			'*', '?', '[', ']', // glob patterns
			'(', ')', // subshell
			'{', '}', // brace expansion
			'<', '>', '|', // redirection/pipe
			'&', ';', // background/separator
			'#', '~':
			if !lastWasUnderscore {
				b.WriteByte('_')
				lastWasUnderscore = true
			}

		default:
			if unicode.IsControl(r) {
				continue
			}
			b.WriteRune(r)
			lastWasUnderscore = r == '_'
		}
	}

	return strings.Trim(b.String(), "_")
}

// normalizeToASCII converts non-ASCII characters to their ASCII equivalents.
// Uses NFKD normalization to decompose characters (ō→o, é→e, etc.)
// and strips any remaining non-ASCII characters.
func normalizeToASCII(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	result, _, _ := transform.String(t, s)

	var b strings.Builder
	for _, r := range result {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
