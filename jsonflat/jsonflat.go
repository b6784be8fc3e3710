// Package jsonflat converts nested JSON localization files to flat key/value
// maps and back.
//
//	{"user": {"name": "John", "tags": ["a", "b"]}}
//
// flattens (with the default options) to
//
//	user.name     = John
//	user.tags.[0] = a
//	user.tags.[1] = b
package jsonflat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/minios-linux/stringsmith/kvmap"
)

// ErrInvalidJSON is returned when the input is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON format")

// Options controls flattening.
type Options struct {
	// Separator joins nested key segments.
	Separator string
	// MaxDepth limits nesting. Containers at this depth are stored as
	// compact JSON text under their parent key.
	MaxDepth int
	// PreserveArrays stores arrays as compact JSON text instead of one key
	// per element.
	PreserveArrays bool
	// IncludeArrayIndices writes element keys as "[0]" rather than "0".
	IncludeArrayIndices bool
}

// DefaultOptions returns the options used when no preset is given.
func DefaultOptions() Options {
	return Options{Separator: ".", MaxDepth: 10, IncludeArrayIndices: true}
}

// Presets for common layouts.
var (
	Web    = Options{Separator: ".", MaxDepth: 5, PreserveArrays: true}
	Mobile = Options{Separator: "_", MaxDepth: 3, IncludeArrayIndices: true}
	Config = Options{Separator: ".", MaxDepth: 10, IncludeArrayIndices: true}
	Simple = Options{Separator: "_", MaxDepth: 2, PreserveArrays: true}
)

// Preset returns the named preset (web, mobile, config, simple).
func Preset(name string) (Options, bool) {
	switch strings.ToLower(name) {
	case "web":
		return Web, true
	case "mobile":
		return Mobile, true
	case "config":
		return Config, true
	case "simple":
		return Simple, true
	}
	return Options{}, false
}

// IsJSON reports whether content looks like a JSON object or array.
func IsJSON(content string) bool {
	t := strings.TrimSpace(content)
	return (strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}")) ||
		(strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]"))
}

// ---------------------------------------------------------------------------
// Flatten
// ---------------------------------------------------------------------------

// Flatten parses content and returns its leaves as a flat map in document
// order. Strings keep their text, other scalars their JSON literal.
func Flatten(content string, opts Options) (*kvmap.Map, error) {
	if !gjson.Valid(content) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJSON, snippet(content))
	}
	if opts.Separator == "" {
		opts.Separator = "."
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultOptions().MaxDepth
	}
	out := kvmap.New()
	flatten(out, gjson.Parse(content), "", 0, opts)
	return out, nil
}

func flatten(out *kvmap.Map, r gjson.Result, parent string, depth int, opts Options) {
	container := r.IsObject() || r.IsArray()
	switch {
	case container && depth >= opts.MaxDepth:
		key := parent
		if key == "" {
			key = "deep_object"
		}
		out.Set(key, compact(r.Raw))

	case r.IsArray():
		if opts.PreserveArrays {
			out.Set(parent, compact(r.Raw))
			return
		}
		for i, item := range r.Array() {
			seg := strconv.Itoa(i)
			if opts.IncludeArrayIndices {
				seg = "[" + seg + "]"
			}
			flatten(out, item, join(parent, seg, opts.Separator), depth+1, opts)
		}

	case r.IsObject():
		r.ForEach(func(k, v gjson.Result) bool {
			flatten(out, v, join(parent, k.String(), opts.Separator), depth+1, opts)
			return true
		})

	case r.Type == gjson.String:
		out.Set(parent, r.Str)

	default:
		out.Set(parent, r.Raw)
	}
}

func join(parent, seg, sep string) string {
	if parent == "" {
		return seg
	}
	return parent + sep + seg
}

func compact(raw string) string {
	return string(pretty.Ugly([]byte(raw)))
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}

// ---------------------------------------------------------------------------
// Unflatten
// ---------------------------------------------------------------------------

// UnflattenOptions controls Unflatten.
type UnflattenOptions struct {
	Separator string
	// ParseNumbers writes numeric-looking values as JSON numbers.
	ParseNumbers bool
	// ParseArrays creates arrays for numeric key segments.
	ParseArrays bool
}

// DefaultUnflattenOptions returns the default unflatten options.
func DefaultUnflattenOptions() UnflattenOptions {
	return UnflattenOptions{Separator: ".", ParseNumbers: true, ParseArrays: true}
}

// Unflatten rebuilds nested JSON from a flat map and returns it indented by
// two spaces. "[i]" segments (and bare numeric segments when ParseArrays is
// set) become array elements. Values "true", "false", "null", numbers and
// embedded JSON objects or arrays are written with their JSON type; the
// value "undefined" is omitted from objects and written as null in arrays.
func Unflatten(m *kvmap.Map, opts UnflattenOptions) string {
	if opts.Separator == "" {
		opts.Separator = "."
	}
	root := &node{kind: objectNode}
	m.Each(func(key, value string) {
		root.insert(strings.Split(key, opts.Separator), value, opts)
	})

	var b bytes.Buffer
	root.write(&b)
	return string(pretty.PrettyOptions(b.Bytes(), &pretty.Options{Indent: "  "}))
}

type nodeKind int

const (
	objectNode nodeKind = iota
	arrayNode
	valueNode
)

// node is an ordered JSON tree. Object fields keep insertion order.
type node struct {
	kind   nodeKind
	keys   []string
	fields map[string]*node
	items  []*node
	// raw is the JSON literal of a value node; "" means undefined.
	raw string
}

func (n *node) insert(parts []string, value string, opts UnflattenOptions) {
	cur := n
	for i, part := range parts {
		last := i == len(parts)-1
		base, index, isIndex := splitIndex(part)

		if isIndex && base != "" {
			cur = cur.child(base, arrayNode)
		}
		if isIndex || (cur.kind == arrayNode && isDigits(part)) {
			if !isIndex {
				index, _ = strconv.Atoi(part)
			}
			if cur.kind != arrayNode && len(cur.keys) == 0 {
				cur.kind = arrayNode
			}
			if cur.kind == arrayNode {
				if last {
					cur.setItem(index, &node{kind: valueNode, raw: literal(value, opts)})
					return
				}
				cur = cur.itemAt(index, nextKind(parts[i+1], opts))
				continue
			}
		}

		if last {
			cur.setField(part, &node{kind: valueNode, raw: literal(value, opts)})
			return
		}
		cur = cur.child(part, nextKind(parts[i+1], opts))
	}
}

func nextKind(next string, opts UnflattenOptions) nodeKind {
	if opts.ParseArrays && (isDigits(next) || strings.HasPrefix(next, "[")) {
		return arrayNode
	}
	return objectNode
}

// child returns the container under field key, replacing a scalar there.
func (n *node) child(key string, kind nodeKind) *node {
	if c, ok := n.fields[key]; ok && c.kind != valueNode {
		return c
	}
	c := &node{kind: kind}
	n.setField(key, c)
	return c
}

func (n *node) setField(key string, c *node) {
	if n.fields == nil {
		n.fields = make(map[string]*node)
	}
	if _, ok := n.fields[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = c
}

func (n *node) itemAt(index int, kind nodeKind) *node {
	if index < len(n.items) {
		if c := n.items[index]; c != nil && c.kind != valueNode {
			return c
		}
	}
	c := &node{kind: kind}
	n.setItem(index, c)
	return c
}

func (n *node) setItem(index int, c *node) {
	for len(n.items) <= index {
		n.items = append(n.items, nil)
	}
	n.items[index] = c
}

func (n *node) write(b *bytes.Buffer) {
	switch n.kind {
	case objectNode:
		b.WriteByte('{')
		first := true
		for _, k := range n.keys {
			c := n.fields[k]
			if c.kind == valueNode && c.raw == "" {
				continue
			}
			if !first {
				b.WriteByte(',')
			}
			first = false
			b.WriteString(quote(k))
			b.WriteByte(':')
			c.write(b)
		}
		b.WriteByte('}')
	case arrayNode:
		b.WriteByte('[')
		for i, c := range n.items {
			if i > 0 {
				b.WriteByte(',')
			}
			if c == nil || (c.kind == valueNode && c.raw == "") {
				b.WriteString("null")
				continue
			}
			c.write(b)
		}
		b.WriteByte(']')
	default:
		b.WriteString(n.raw)
	}
}

// literal returns the JSON text for a flat value, or "" for "undefined".
func literal(v string, opts UnflattenOptions) string {
	switch v {
	case "null", "true", "false":
		return v
	case "undefined":
		return ""
	}
	if opts.ParseNumbers && isNumber(v) {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "."), 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	if IsJSON(v) && gjson.Valid(v) {
		return compact(v)
	}
	return quote(v)
}

// isNumber matches -?\d+\.?\d*
func isNumber(s string) bool {
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")
	return isDigits(intPart) && (frac == "" || isDigits(frac))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// splitIndex splits "name[3]" into ("name", 3) and "[3]" into ("", 3).
func splitIndex(part string) (base string, index int, ok bool) {
	if !strings.HasSuffix(part, "]") {
		return "", 0, false
	}
	open := strings.LastIndexByte(part, '[')
	if open < 0 {
		return "", 0, false
	}
	digits := part[open+1 : len(part)-1]
	if !isDigits(digits) {
		return "", 0, false
	}
	index, err := strconv.Atoi(digits)
	if err != nil {
		return "", 0, false
	}
	return part[:open], index, true
}

func quote(s string) string {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(b.String(), "\n")
}
