// Package specialchars flags format placeholders and escape sequences in
// translation values, so translators can check they were kept.
package specialchars

import (
	"strings"

	"github.com/minios-linux/stringsmith/kvmap"
)

// Char is a recognised placeholder or escape sequence.
type Char struct {
	Token       string
	Description string
	// alt is a decoded form that also counts as a match (a real newline for
	// the `\n` escape).
	alt string
}

// All lists the recognised tokens in reporting order.
var All = []Char{
	{Token: "%@", Description: "iOS string placeholder"},
	{Token: "%d", Description: "Integer placeholder"},
	{Token: "%f", Description: "Float placeholder"},
	{Token: "%s", Description: "String placeholder"},
	{Token: "%ld", Description: "Long integer placeholder"},
	{Token: "%lf", Description: "Long float placeholder"},
	{Token: `\n`, Description: "Line break", alt: "\n"},
	{Token: `\t`, Description: "Tab character", alt: "\t"},
	{Token: `\r`, Description: "Carriage return", alt: "\r"},
	{Token: "{{", Description: "Template literal start"},
	{Token: "}}", Description: "Template literal end"},
	{Token: "{", Description: "Curly brace start"},
	{Token: "}", Description: "Curly brace end"},
}

func (c Char) in(value string) bool {
	return strings.Contains(value, c.Token) || (c.alt != "" && strings.Contains(value, c.alt))
}

// Detect returns the tokens found in value, in the order of All.
func Detect(value string) []Char {
	if value == "" {
		return nil
	}
	var found []Char
	for _, c := range All {
		if c.in(value) {
			found = append(found, c)
		}
	}
	return found
}

// Has reports whether value contains any token.
func Has(value string) bool {
	for _, c := range All {
		if c.in(value) {
			return true
		}
	}
	return false
}

// HasInMap reports whether the value of key contains a token. With key ""
// every value of m is checked.
func HasInMap(m *kvmap.Map, key string) bool {
	if key != "" {
		return Has(m.Value(key))
	}
	found := false
	m.Each(func(_, v string) {
		if !found && Has(v) {
			found = true
		}
	})
	return found
}

// ForKey returns the union of tokens found in the value of key across all
// languages, in the order of All.
func ForKey(languages []*kvmap.Map, key string) []Char {
	seen := make(map[string]bool)
	for _, m := range languages {
		for _, c := range Detect(m.Value(key)) {
			seen[c.Token] = true
		}
	}
	var out []Char
	for _, c := range All {
		if seen[c.Token] {
			out = append(out, c)
		}
	}
	return out
}

// Tooltip formats found tokens as a multi-line message, or "" if none.
func Tooltip(chars []Char) string {
	if len(chars) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Special characters detected:")
	for _, c := range chars {
		b.WriteString("\n" + c.Token + " (" + c.Description + ")")
	}
	return b.String()
}

// Tokens returns the Token of each Char.
func Tokens(chars []Char) []string {
	out := make([]string, len(chars))
	for i, c := range chars {
		out[i] = c.Token
	}
	return out
}
