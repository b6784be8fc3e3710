package android

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var namedEntities = map[string]rune{
	"lt":   '<',
	"gt":   '>',
	"amp":  '&',
	"quot": '"',
	"apos": '\'',
}

// Decode converts the text content of a <string> element to its plain value.
//
// XML entities (named, decimal and hex) and Android backslash escapes
// (\" \' \n \t \\ \@ \?) are resolved in a single pass, so the output of one
// rule is never fed to another. CDATA sections are copied through unchanged.
// Anything unrecognised is kept as written.
func Decode(s string) string {
	if !strings.ContainsAny(s, `&\<`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '&':
			if r, n, ok := decodeEntity(s[i:]); ok {
				b.WriteRune(r)
				i += n - 1
				continue
			}
		case '\\':
			if i+1 < len(s) {
				if r, ok := backslashEscape(s[i+1]); ok {
					b.WriteByte(r)
					i++
					continue
				}
			}
		case '<':
			if strings.HasPrefix(s[i:], "<![CDATA[") {
				if end := strings.Index(s[i+9:], "]]>"); end >= 0 {
					b.WriteString(s[i+9 : i+9+end])
					i += 9 + end + 2
					continue
				}
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func backslashEscape(c byte) (byte, bool) {
	switch c {
	case '"', '\'', '\\', '@', '?':
		return c, true
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	}
	return 0, false
}

// decodeEntity decodes the entity at the start of s ("&...;") and returns the
// rune and the number of bytes consumed.
func decodeEntity(s string) (rune, int, bool) {
	semi := strings.IndexByte(s, ';')
	if semi < 2 || semi > 12 {
		return 0, 0, false
	}
	name := s[1:semi]
	if r, ok := namedEntities[name]; ok {
		return r, semi + 1, true
	}
	if name[0] != '#' || len(name) < 2 {
		return 0, 0, false
	}
	var (
		n   uint64
		err error
	)
	if name[1] == 'x' || name[1] == 'X' {
		n, err = strconv.ParseUint(name[2:], 16, 32)
	} else {
		n, err = strconv.ParseUint(name[1:], 10, 32)
	}
	if err != nil || !utf8.ValidRune(rune(n)) {
		return 0, 0, false
	}
	return rune(n), semi + 1, true
}

// markupTag matches inline markup such as <b>, </i> or <xliff:g id="x">.
var markupTag = regexp.MustCompile(`</?[A-Za-z][A-Za-z0-9:_-]*(\s[^<>]*)?/?>`)

// Encode converts a plain value to <string> element content. Decode(Encode(v))
// always returns v.
//
// Values carrying inline markup keep their '<' and '>' unescaped so the tags
// survive, unless the text would close the enclosing element or open a CDATA
// section.
func Encode(v string) string {
	keepTags := markupTag.MatchString(v) &&
		!strings.Contains(v, "</string") && !strings.Contains(v, "<![CDATA[")
	var b strings.Builder
	b.Grow(len(v) + 8)
	for _, r := range v {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '&':
			b.WriteString("&amp;")
		case '<':
			if keepTags {
				b.WriteRune(r)
			} else {
				b.WriteString("&lt;")
			}
		case '>':
			if keepTags {
				b.WriteRune(r)
			} else {
				b.WriteString("&gt;")
			}
		case '\'':
			b.WriteString(`\'`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
