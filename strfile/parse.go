// Package strfile implements reading and writing of Apple .strings files.
//
// Format: `"key" = "value";` statements, // line comments, /* */ block
// comments (possibly spanning lines) and blank lines, in any order. Keys may
// appear more than once; the latest occurrence wins.
//
// Two parsers are provided. Parse/ParseDetailed return only the key → value
// map and never fail on malformed input. ParseWithStructure also records
// every physical line as a structural Item so MarshalWithStructure can write
// the file back byte-for-byte, changing only what was edited.
//
// Values are always held decoded in memory; escaping exists only in file
// text (see Escape and Unescape).
package strfile

import (
	"strings"

	"github.com/minios-linux/stringsmith/kvmap"
)

// ---------------------------------------------------------------------------
// Duplicate reporting
// ---------------------------------------------------------------------------

// Occurrence is one appearance of a duplicated key.
type Occurrence struct {
	Value string `yaml:"value"`
	// Line is 1-based.
	Line int `yaml:"line"`
	// Used is true only for the occurrence whose value was kept (the last one).
	Used bool `yaml:"used"`
}

// DuplicateDetail lists every occurrence of one duplicated key in document order.
type DuplicateDetail struct {
	Key         string       `yaml:"key"`
	Occurrences []Occurrence `yaml:"occurrences"`
}

// DuplicateReport describes keys that appeared more than once.
type DuplicateReport struct {
	// Count is the number of distinct duplicated keys.
	Count   int               `yaml:"count"`
	Keys    []string          `yaml:"keys"`
	Details []DuplicateDetail `yaml:"details"`
}

// HasDuplicates reports whether any key appeared more than once.
func (r DuplicateReport) HasDuplicates() bool { return r.Count > 0 }

// ---------------------------------------------------------------------------
// Strict parsing
// ---------------------------------------------------------------------------

// Parse returns the key → value map of a .strings file.
// Comments are stripped first; lines that do not form a valid statement are
// skipped silently.
func Parse(content string) *kvmap.Map {
	m, _ := ParseDetailed(content)
	return m
}

// ParseDetailed is Parse plus a report of duplicated keys with the line
// number and value of each occurrence.
func ParseDetailed(content string) (*kvmap.Map, DuplicateReport) {
	result := kvmap.New()
	report := DuplicateReport{}
	if strings.TrimSpace(content) == "" {
		return result, report
	}

	occurrences := make(map[string][]Occurrence)
	var dupOrder []string

	for i, ln := range strings.Split(StripComments(content), "\n") {
		trimmed := strings.TrimSpace(ln)
		if trimmed == "" || !strings.Contains(trimmed, "=") {
			continue
		}
		st, ok := matchStatementAt(trimmed, 0)
		if !ok {
			continue
		}
		value := Unescape(st.rawValue)

		if result.Has(st.key) {
			if len(occurrences[st.key]) == 1 {
				dupOrder = append(dupOrder, st.key)
			}
			// Latest wins: re-insert so the key moves to its latest position.
			result.Delete(st.key)
		}
		result.Set(st.key, value)
		occurrences[st.key] = append(occurrences[st.key], Occurrence{Value: value, Line: i + 1})
	}

	for _, key := range dupOrder {
		occ := occurrences[key]
		occ[len(occ)-1].Used = true
		report.Keys = append(report.Keys, key)
		report.Details = append(report.Details, DuplicateDetail{Key: key, Occurrences: occ})
	}
	report.Count = len(report.Keys)
	return result, report
}
