package cue

import "strings"

// splitFields tokenizes one CUE line. Fields are separated by spaces or
// tabs; a double-quoted span is a single field with the quotes removed and
// may contain blanks. An unterminated quote runs to the end of the line.
// A trailing carriage return is treated as part of the line terminator.
func splitFields(line string) []string {
	line = strings.TrimRight(line, "\r\n")

	var (
		fields  []string
		cur     strings.Builder
		inQuote bool
		pending bool // cur holds a field, possibly an empty quoted one
	)

	flush := func() {
		if pending {
			fields = append(fields, cur.String())
			cur.Reset()
			pending = false
		}
	}

	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			pending = true
		case (r == ' ' || r == '\t') && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
			pending = true
		}
	}
	flush()

	return fields
}
