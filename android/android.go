// Package android implements reading and writing of Android strings.xml files.
//
// Only <string> resources are edited. Everything else in the file
// (<string-array>, <plurals>, comments, the XML prolog) is kept verbatim by
// the structural parser and written back untouched.
//
// As with .strings files, keys may be repeated and the latest occurrence
// wins. Parsing never fails: malformed content yields fewer entries.
package android

import (
	"regexp"
	"strings"

	"github.com/minios-linux/stringsmith/keymerge"
	"github.com/minios-linux/stringsmith/kvmap"
	"github.com/minios-linux/stringsmith/strfile"
)

// NewEntriesComment heads the entries that did not exist in the original file.
const NewEntriesComment = "    <!-- New entries added by editor -->"

const defaultIndent = "    "

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// ItemKind classifies a structural item of a strings.xml file.
type ItemKind int

const (
	// ItemBlank is a whitespace-only line.
	ItemBlank ItemKind = iota
	// ItemComment is an XML comment, possibly spanning several lines.
	ItemComment
	// ItemHeader is the XML prolog, the <resources> opening tag, or any line
	// that is not a <string> resource (kept verbatim).
	ItemHeader
	// ItemFooter is the </resources> closing tag.
	ItemFooter
	// ItemString is a <string> resource, possibly spanning several lines.
	ItemString
)

func (k ItemKind) String() string {
	switch k {
	case ItemBlank:
		return "blank"
	case ItemComment:
		return "comment"
	case ItemHeader:
		return "header"
	case ItemFooter:
		return "footer"
	case ItemString:
		return "string"
	}
	return "unknown"
}

// Item is one structural element. Multi-line comments and strings are one
// item whose Line contains "\n". Several <string> elements on one physical
// line are separate items; all but the first have SameLine set and their
// Line holds only their own part of the line.
type Item struct {
	Kind ItemKind
	// Line is the exact original text.
	Line string

	// --- ItemString ---

	Key string
	// Value is the decoded value.
	Value string
	// Attributes holds the attributes after name="…", trimmed (for example
	// `translatable="false"`). Empty if none.
	Attributes string
	// Indent is the whitespace before <string.
	Indent string
	// Suffix is the text after </string> on the closing line.
	Suffix string
	// SameLine marks an element that continues the previous item's line.
	SameLine bool
}

// ParsedFile is the result of ParseWithStructure.
type ParsedFile struct {
	Data            *kvmap.Map
	Structure       []Item
	OriginalContent string
}

// Keys returns the string keys in document order, including repeats.
func (p *ParsedFile) Keys() []string {
	var keys []string
	for _, it := range p.Structure {
		if it.Kind == ItemString {
			keys = append(keys, it.Key)
		}
	}
	return keys
}

// ---------------------------------------------------------------------------
// Strict parsing
// ---------------------------------------------------------------------------

var (
	reComment = regexp.MustCompile(`(?s)<!--.*?-->`)
	reString  = regexp.MustCompile(`(?s)<string\s+name="([^"]+)"[^>]*>(.*?)</string>`)
)

// Parse returns the key → value map of a strings.xml file.
func Parse(content string) *kvmap.Map {
	m, _ := ParseDetailed(content)
	return m
}

// ParseDetailed is Parse plus a duplicate report. Line numbers refer to the
// original content.
func ParseDetailed(content string) (*kvmap.Map, strfile.DuplicateReport) {
	result := kvmap.New()
	report := strfile.DuplicateReport{}
	if strings.TrimSpace(content) == "" {
		return result, report
	}

	// Blank out comments but keep their newlines so offsets map to lines.
	clean := reComment.ReplaceAllStringFunc(content, func(c string) string {
		return strings.Repeat("\n", strings.Count(c, "\n"))
	})

	occurrences := make(map[string][]strfile.Occurrence)
	var dupOrder []string

	for _, loc := range reString.FindAllStringSubmatchIndex(clean, -1) {
		key := clean[loc[2]:loc[3]]
		value := Decode(clean[loc[4]:loc[5]])
		line := strings.Count(clean[:loc[0]], "\n") + 1

		if result.Has(key) {
			if len(occurrences[key]) == 1 {
				dupOrder = append(dupOrder, key)
			}
			result.Delete(key)
		}
		result.Set(key, value)
		occurrences[key] = append(occurrences[key], strfile.Occurrence{Value: value, Line: line})
	}

	for _, key := range dupOrder {
		occ := occurrences[key]
		occ[len(occ)-1].Used = true
		report.Keys = append(report.Keys, key)
		report.Details = append(report.Details, strfile.DuplicateDetail{Key: key, Occurrences: occ})
	}
	report.Count = len(report.Keys)
	return result, report
}

// ---------------------------------------------------------------------------
// Structural parsing
// ---------------------------------------------------------------------------

var (
	reStringOpen  = regexp.MustCompile(`^(\s*)<string\s+name="([^"]+)"([^>]*)>`)
	reStringClose = regexp.MustCompile(`</string>`)
)

// ParseWithStructure parses content keeping every line. Lines are split on
// "\n" only, so joining Item.Line values with "\n" (or with nothing before a
// SameLine item) reproduces content.
func ParseWithStructure(content string) *ParsedFile {
	pf := &ParsedFile{Data: kvmap.New(), OriginalContent: content}
	if content == "" {
		return pf
	}

	lines := strings.Split(content, "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			pf.add(Item{Kind: ItemBlank, Line: line})

		case strings.HasPrefix(trimmed, "<?xml"),
			strings.HasPrefix(trimmed, "<!DOCTYPE"),
			strings.HasPrefix(trimmed, "<resources"):
			pf.add(Item{Kind: ItemHeader, Line: line})

		case strings.HasPrefix(trimmed, "</resources>"):
			pf.add(Item{Kind: ItemFooter, Line: line})

		case strings.HasPrefix(trimmed, "<!--"):
			end := i
			for !strings.Contains(lines[end], "-->") && end < len(lines)-1 {
				end++
			}
			if !strings.Contains(lines[end], "-->") {
				// Unterminated: keep the opening line alone.
				end = i
			}
			pf.add(Item{Kind: ItemComment, Line: strings.Join(lines[i:end+1], "\n")})
			i = end

		default:
			it, end, ok := stringItem(lines, i, line)
			if !ok {
				pf.add(Item{Kind: ItemHeader, Line: line})
				continue
			}
			// More elements after the closing tag, separated by whitespace.
			for {
				next, nextEnd, ok := stringItem(lines, end, it.Suffix)
				if !ok {
					break
				}
				it.Line = strings.TrimSuffix(it.Line, it.Suffix)
				it.Suffix = ""
				pf.add(it)
				next.SameLine = true
				it, end = next, nextEnd
			}
			pf.add(it)
			i = end
		}
	}
	return pf
}

func (p *ParsedFile) add(it Item) {
	if it.Kind == ItemString {
		p.Data.Set(it.Key, it.Value)
	}
	p.Structure = append(p.Structure, it)
}

// stringItem matches a <string> resource starting at first, the tail of
// lines[i], possibly continuing on following lines. It returns the index of
// the last line used.
func stringItem(lines []string, i int, first string) (Item, int, bool) {
	open := reStringOpen.FindStringSubmatchIndex(first)
	if open == nil {
		return Item{}, i, false
	}
	it := Item{
		Kind:       ItemString,
		Indent:     first[open[2]:open[3]],
		Key:        first[open[4]:open[5]],
		Attributes: strings.TrimSpace(first[open[6]:open[7]]),
	}

	// Search for </string> from the end of the opening tag onwards.
	rest := first[open[1]:]
	for end := i; end < len(lines); end++ {
		seg := lines[end]
		if end == i {
			seg = rest
		}
		loc := reStringClose.FindStringIndex(seg)
		if loc == nil {
			continue
		}
		body := make([]string, 0, end-i+1)
		if end == i {
			body = append(body, rest[:loc[0]])
		} else {
			body = append(body, rest)
			body = append(body, lines[i+1:end]...)
			body = append(body, seg[:loc[0]])
		}
		it.Line = strings.Join(append([]string{first}, lines[i+1:end+1]...), "\n")
		it.Value = Decode(strings.Join(body, "\n"))
		it.Suffix = seg[loc[1]:]
		return it, end, true
	}
	return Item{}, i, false
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

const (
	xmlProlog     = `<?xml version="1.0" encoding="utf-8"?>`
	resourcesOpen = "<resources>"
	resourcesEnd  = "</resources>"
)

func formatEntry(indent, key, attrs, value string) string {
	if attrs != "" {
		attrs = " " + attrs
	}
	return indent + `<string name="` + key + `"` + attrs + ">" + Encode(value) + "</string>"
}

// Marshal writes m as a complete strings.xml document, one <string> per key.
// Composite display keys are split back first.
func Marshal(m *kvmap.Map) string {
	var b strings.Builder
	b.WriteString(xmlProlog + "\n" + resourcesOpen + "\n")
	keymerge.Split(m, keymerge.DefaultOptions()).Each(func(k, v string) {
		if k == "" {
			return
		}
		b.WriteString(formatEntry(defaultIndent, k, "", v) + "\n")
	})
	b.WriteString(resourcesEnd + "\n")
	return b.String()
}

// MarshalWithStructure writes m using the structure captured by
// ParseWithStructure. It follows the same rules as the .strings exporter:
// only the last occurrence of a key is written, unchanged entries are copied
// verbatim, edited entries are rebuilt with their original indentation,
// attributes and trailing text, and removed keys are dropped. New keys are
// inserted before the last </resources> under NewEntriesComment.
func MarshalWithStructure(m *kvmap.Map, structure []Item) string {
	if len(structure) == 0 {
		return Marshal(m)
	}

	keep := make(map[string]int)
	for i := len(structure) - 1; i >= 0; i-- {
		it := structure[i]
		if it.Kind != ItemString {
			continue
		}
		if _, seen := keep[it.Key]; !seen && m.Has(it.Key) {
			keep[it.Key] = i
		}
	}

	lines := make([]string, 0, len(structure))
	seen := make(map[string]bool)
	footer := -1
	// lineOpen is set once something of the current physical line is written.
	lineOpen := false

	for i, it := range structure {
		if !it.SameLine {
			lineOpen = false
		}
		switch it.Kind {
		case ItemString:
			seen[it.Key] = true
			if keep[it.Key] != i || !m.Has(it.Key) {
				continue
			}
			text := it.Line
			if value, _ := m.Get(it.Key); value != it.Value {
				text = formatEntry(it.Indent, it.Key, it.Attributes, value) + it.Suffix
			}
			if it.SameLine && lineOpen {
				lines[len(lines)-1] += text
			} else {
				lines = append(lines, text)
			}
			lineOpen = true
		case ItemFooter:
			footer = len(lines)
			lines = append(lines, it.Line)
		default:
			lines = append(lines, it.Line)
		}
	}

	var added []string
	m.Each(func(k, v string) {
		if k != "" && !seen[k] {
			added = append(added, formatEntry(defaultIndent, k, "", v))
		}
	})
	if len(added) == 0 {
		return strings.Join(lines, "\n")
	}

	insertAt := footer
	if insertAt < 0 {
		insertAt = len(lines)
	}
	block := make([]string, 0, len(added)+2)
	if insertAt > 0 && strings.TrimSpace(lines[insertAt-1]) != "" {
		block = append(block, "")
	}
	block = append(block, NewEntriesComment)
	block = append(block, added...)

	out := make([]string, 0, len(lines)+len(block))
	out = append(out, lines[:insertAt]...)
	out = append(out, block...)
	out = append(out, lines[insertAt:]...)
	return strings.Join(out, "\n")
}

// IsAndroidXML reports whether content looks like an Android strings.xml
// document.
func IsAndroidXML(content string) bool {
	return (strings.Contains(content, "<resources>") || strings.Contains(content, "<resources ")) &&
		strings.Contains(content, "<string name=")
}
