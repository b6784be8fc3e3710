package strfile

import "strings"

// Unescape decodes the raw text found between a value's quotes.
//
// Only \" \\ and \n are interpreted. Any other backslash pair (\t, \r, \u…)
// is kept as-is, both characters, so unknown escapes survive a round trip.
func Unescape(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 == len(raw) {
			b.WriteByte(c)
			continue
		}
		switch next := raw[i+1]; next {
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		default:
			b.WriteByte('\\')
			b.WriteByte(next)
		}
		i++
	}
	return b.String()
}

// Escape encodes a value for output between double quotes.
// Backslashes are doubled first so the quote and newline escapes that follow
// are never escaped twice.
func Escape(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 8)
	for i := 0; i < len(value); i++ {
		switch c := value[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// formatEntry renders a canonical `"key" = "value";` statement.
func formatEntry(key, value string) string {
	return `"` + key + `" = "` + Escape(value) + `";`
}
