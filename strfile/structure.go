package strfile

import (
	"strings"

	"github.com/minios-linux/stringsmith/kvmap"
)

// ---------------------------------------------------------------------------
// Structural model
// ---------------------------------------------------------------------------

// ItemKind classifies one physical line of a .strings file.
type ItemKind int

const (
	// ItemBlank is a whitespace-only line.
	ItemBlank ItemKind = iota
	// ItemComment is a comment line, a line of a block comment, or any line
	// that could not be recognised (kept verbatim rather than dropped).
	ItemComment
	// ItemKey is a key/value statement.
	ItemKey
)

func (k ItemKind) String() string {
	switch k {
	case ItemBlank:
		return "blank"
	case ItemComment:
		return "comment"
	case ItemKey:
		return "key"
	}
	return "unknown"
}

// Item is one line of the original file.
type Item struct {
	Kind ItemKind
	// Line is the exact original text, without the trailing "\n".
	Line string

	// --- ItemKey ---

	// Key is the statement key.
	Key string
	// Value is the decoded value as parsed.
	Value string
	// Prefix is the text before the statement (indentation, a leading
	// `/* note */`, or the tail of a block comment closed on this line).
	Prefix string
	// Suffix is the text after the closing quote and optional ';'.
	Suffix string
	// InlineComment is the trailing // or /* */ comment, trimmed. Empty if none.
	InlineComment string

	// stray marks comment items that are unrecognised lines rather than real
	// comments.
	stray bool
}

// ParsedFile is the result of ParseWithStructure.
type ParsedFile struct {
	// Data is the key → value map. Callers edit it; Structure stays untouched.
	Data *kvmap.Map
	// Structure is the line-by-line snapshot of the original text.
	Structure []Item
	// OriginalContent is the unmodified input.
	OriginalContent string
}

// Keys returns the keys present in Structure, in document order, including
// repeats of duplicated keys.
func (p *ParsedFile) Keys() []string {
	var keys []string
	for _, it := range p.Structure {
		if it.Kind == ItemKey {
			keys = append(keys, it.Key)
		}
	}
	return keys
}

// ---------------------------------------------------------------------------
// Structural parsing
// ---------------------------------------------------------------------------

// ParseWithStructure parses content keeping every line as an Item.
//
// Lines are split on "\n" only; a "\r" stays part of the line text so CRLF
// files are reproduced exactly. Joining Item.Line values with "\n" gives back
// content byte-for-byte.
func ParseWithStructure(content string) *ParsedFile {
	pf := &ParsedFile{Data: kvmap.New(), OriginalContent: content}
	if content == "" {
		return pf
	}

	inBlock := false
	for _, line := range strings.Split(content, "\n") {
		if inBlock {
			closeAt := strings.Index(line, "*/")
			if closeAt < 0 {
				pf.Structure = append(pf.Structure, Item{Kind: ItemComment, Line: line})
				continue
			}
			inBlock = false
			tail := line[closeAt+2:]
			if st, ok := findStatement(tail); ok {
				it := keyItem(line, closeAt+2, st, tail)
				pf.Data.Set(it.Key, it.Value)
				pf.Structure = append(pf.Structure, it)
				inBlock = opensBlock(it.Suffix, false)
				continue
			}
			pf.Structure = append(pf.Structure, Item{Kind: ItemComment, Line: line})
			inBlock = opensBlock(tail, false)
			continue
		}

		trimmed := strings.TrimSpace(line)
		isLineComment := strings.HasPrefix(trimmed, "//")
		st, isKey := statement{}, false
		if !isLineComment {
			st, isKey = findStatement(line)
		}
		switch {
		case trimmed == "":
			pf.Structure = append(pf.Structure, Item{Kind: ItemBlank, Line: line})

		case isKey:
			it := keyItem(line, 0, st, line)
			pf.Data.Set(it.Key, it.Value)
			pf.Structure = append(pf.Structure, it)
			inBlock = opensBlock(it.Suffix, false)

		case isLineComment:
			pf.Structure = append(pf.Structure, Item{Kind: ItemComment, Line: line})

		case opensBlock(line, false):
			pf.Structure = append(pf.Structure, Item{Kind: ItemComment, Line: line})
			inBlock = true

		default:
			pf.Structure = append(pf.Structure, Item{
				Kind:  ItemComment,
				Line:  line,
				stray: !strings.HasPrefix(trimmed, "/*"),
			})
		}
	}
	return pf
}

// keyItem builds an ItemKey from a statement found in seg, where seg is
// line[offset:].
func keyItem(line string, offset int, st statement, seg string) Item {
	suffix := seg[st.end:]
	it := Item{
		Kind:   ItemKey,
		Line:   line,
		Key:    st.key,
		Value:  Unescape(st.rawValue),
		Prefix: line[:offset+st.start],
		Suffix: suffix,
	}
	if c := strings.TrimSpace(suffix); isCommentStart(c) {
		it.InlineComment = c
	}
	return it
}
