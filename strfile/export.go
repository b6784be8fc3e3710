package strfile

import (
	"strings"

	"github.com/minios-linux/stringsmith/keymerge"
	"github.com/minios-linux/stringsmith/kvmap"
)

// NewKeysComment heads the block of keys that did not exist in the original
// file.
const NewKeysComment = "// New keys added during editing"

// Marshal writes m as plain `"key" = "value";` lines in map order, without
// comments. Composite display keys left over from key merging are split back
// first.
func Marshal(m *kvmap.Map) string {
	split := keymerge.Split(m, keymerge.DefaultOptions())
	lines := make([]string, 0, split.Len())
	split.Each(func(k, v string) {
		if k == "" {
			return
		}
		lines = append(lines, formatEntry(k, v))
	})
	return strings.Join(lines, "\n")
}

// MarshalWithStructure writes m using structure, the line snapshot taken by
// ParseWithStructure. With no structure it falls back to Marshal.
//
//   - Comments and blank lines are copied verbatim.
//   - Only the last occurrence of a key is written; earlier duplicates are
//     dropped, as are keys no longer present in m.
//   - A key whose value is unchanged keeps its original line byte-for-byte.
//     A changed key is re-encoded, keeping the text before and after the
//     statement (leading block comment, trailing inline comment).
//   - Keys of m not found in structure are appended after NewKeysComment.
func MarshalWithStructure(m *kvmap.Map, structure []Item) string {
	if len(structure) == 0 {
		return Marshal(m)
	}

	keep := make(map[string]int)
	for i := len(structure) - 1; i >= 0; i-- {
		it := structure[i]
		if it.Kind != ItemKey {
			continue
		}
		if _, seen := keep[it.Key]; !seen && m.Has(it.Key) {
			keep[it.Key] = i
		}
	}

	lines := make([]string, 0, len(structure))
	emitted := make(map[string]bool, len(keep))
	seen := make(map[string]bool)

	for i, it := range structure {
		switch it.Kind {
		case ItemKey:
			seen[it.Key] = true
			if idx, ok := keep[it.Key]; !ok || idx != i || emitted[it.Key] {
				continue
			}
			value, _ := m.Get(it.Key)
			if value == it.Value {
				lines = append(lines, it.Line)
			} else {
				lines = append(lines, it.Prefix+formatEntry(it.Key, value)+it.Suffix)
			}
			emitted[it.Key] = true

		case ItemComment:
			if it.stray {
				if key, ok := assignmentKey(it.Line); ok && emitted[key] {
					continue
				}
			}
			lines = append(lines, it.Line)

		default:
			lines = append(lines, it.Line)
		}
	}

	var added []string
	m.Each(func(k, v string) {
		if k != "" && !seen[k] {
			added = append(added, formatEntry(k, v))
		}
	})
	if len(added) > 0 {
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) != "" {
			lines = append(lines, "")
		}
		lines = append(lines, NewKeysComment)
		lines = append(lines, added...)
	}

	return strings.Join(lines, "\n")
}

// assignmentKey extracts the key of a line that looks like `key = …`
// without being a valid statement.
func assignmentKey(line string) (string, bool) {
	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return "", false
	}
	key := strings.Trim(strings.TrimSpace(line[:eq]), `"`)
	if key == "" {
		return "", false
	}
	return key, true
}
