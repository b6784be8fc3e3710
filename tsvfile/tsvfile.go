// Package tsvfile reads pasted translation tables: one key per row followed
// by its values in a fixed language order, separated by tabs or runs of two
// or more spaces.
//
//	ok	ตกลง	OK	យល់ព្រម	အိုကေ
package tsvfile

import (
	"regexp"
	"strings"

	"github.com/minios-linux/stringsmith/kvmap"
)

// DefaultLanguages is the column order used when none is given.
var DefaultLanguages = []string{"th", "en", "km", "my"}

var (
	reSeparator = regexp.MustCompile(`\t+|\s{2,}`)
	reKey       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Table holds one map per language, aligned with Languages.
type Table struct {
	Languages []string
	Columns   []*kvmap.Map
}

// Column returns the map of lang, or nil.
func (t *Table) Column(lang string) *kvmap.Map {
	for i, l := range t.Languages {
		if l == lang {
			return t.Columns[i]
		}
	}
	return nil
}

// Len returns the number of keys read.
func (t *Table) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

func splitRow(line string) []string {
	var parts []string
	for _, p := range reSeparator.Split(line, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func rows(content string) []string {
	var out []string
	for _, l := range strings.Split(content, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Parse reads content into a Table. Rows need a valid identifier key and
// between one and len(langs) values; other rows are skipped. Languages
// without a value in a row get "". A nil langs means DefaultLanguages.
func Parse(content string, langs []string) *Table {
	if len(langs) == 0 {
		langs = DefaultLanguages
	}
	t := &Table{Languages: langs, Columns: make([]*kvmap.Map, len(langs))}
	for i := range t.Columns {
		t.Columns[i] = kvmap.New()
	}

	for _, line := range rows(content) {
		parts := splitRow(line)
		if len(parts) < 2 || len(parts) > len(langs)+1 {
			continue
		}
		key, values := parts[0], parts[1:]
		if !reKey.MatchString(key) {
			continue
		}
		for i := range langs {
			v := ""
			if i < len(values) {
				v = values[i]
			}
			t.Columns[i].Set(key, v)
		}
	}
	return t
}

// IsTSV reports whether more than half of the non-empty rows split into 2 to
// 5 columns.
func IsTSV(content string) bool {
	lines := rows(content)
	if len(lines) == 0 {
		return false
	}
	valid := 0
	for _, l := range lines {
		if n := len(splitRow(l)); n >= 2 && n <= 5 {
			valid++
		}
	}
	return valid > 0 && valid*2 > len(lines)
}
