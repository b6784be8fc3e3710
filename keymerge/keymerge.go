// Package keymerge implements multi-key mode: keys whose values are the same
// in every language are shown as one composite row ("ok + confirm") and split
// back into a single key on export.
//
// Grouping is order-insensitive: two keys match when the multisets of their
// non-empty values across languages are equal, regardless of which language
// column contributed which value.
package keymerge

import (
	"sort"
	"strconv"
	"strings"

	"github.com/minios-linux/stringsmith/kvmap"
)

// Separator joins the keys of a composite display label.
const Separator = " + "

// Options tunes which key of a group is treated as primary.
type Options struct {
	// PreferredMarkers mark a key as platform-neutral (preferred as primary).
	PreferredMarkers []string
	// AndroidMarkers mark a key as Android-specific. Keys containing one are
	// only chosen as primary when no other key qualifies.
	AndroidMarkers []string
	// AndroidPrefixes are skipped when Split picks the key to keep.
	AndroidPrefixes []string
}

// DefaultOptions returns the iOS-first heuristics used by the editor.
func DefaultOptions() Options {
	return Options{
		PreferredMarkers: []string{"ios_"},
		AndroidMarkers:   []string{"android_", "xml_"},
		AndroidPrefixes:  []string{"android_"},
	}
}

// Mapping describes one group of keys sharing the same values.
type Mapping struct {
	PrimaryKey    string
	SecondaryKeys []string
	// AllKeys lists the group in discovery order.
	AllKeys []string
	// Values holds the primary key's value per language, aligned with the
	// input maps. Missing values are "".
	Values      []string
	ShouldMerge bool
}

// Label returns the display key: the primary key alone, or all keys joined
// with Separator when the group is merged.
func (mp Mapping) Label() string {
	if !mp.ShouldMerge || len(mp.SecondaryKeys) == 0 {
		return mp.PrimaryKey
	}
	return strings.Join(append([]string{mp.PrimaryKey}, mp.SecondaryKeys...), Separator)
}

// signature sorts the non-blank values and joins them length-prefixed, so
// values containing any separator byte cannot collide.
func signature(values []string) string {
	var kept []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	sort.Strings(kept)
	var b strings.Builder
	for _, v := range kept {
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteByte(':')
		b.WriteString(v)
	}
	return b.String()
}

// unionKeys returns every key of every map: the first map's keys in order,
// then keys first seen in later maps.
func unionKeys(maps []*kvmap.Map) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range maps {
		m.Each(func(k, _ string) {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		})
	}
	return keys
}

func valuesFor(maps []*kvmap.Map, key string) []string {
	values := make([]string, len(maps))
	for i, m := range maps {
		values[i] = m.Value(key)
	}
	return values
}

// FindMergeable groups keys by value signature across all maps (one map per
// language). Keys with no non-blank value anywhere are left out. Groups are
// returned in order of their first key; the primary key of a merged group is
// the first key, in that order, that looks platform-neutral.
func FindMergeable(maps []*kvmap.Map, opts Options) []Mapping {
	groups := make(map[string][]string)
	var order []string

	for _, key := range unionKeys(maps) {
		sig := signature(valuesFor(maps, key))
		if sig == "" {
			continue
		}
		if _, ok := groups[sig]; !ok {
			order = append(order, sig)
		}
		groups[sig] = append(groups[sig], key)
	}

	mappings := make([]Mapping, 0, len(order))
	for _, sig := range order {
		keys := groups[sig]
		if len(keys) == 1 {
			mappings = append(mappings, Mapping{
				PrimaryKey: keys[0],
				AllKeys:    keys,
				Values:     valuesFor(maps, keys[0]),
			})
			continue
		}

		primary := choosePrimary(keys, opts)
		secondary := make([]string, 0, len(keys)-1)
		for _, k := range keys {
			if k != primary {
				secondary = append(secondary, k)
			}
		}
		mappings = append(mappings, Mapping{
			PrimaryKey:    primary,
			SecondaryKeys: secondary,
			AllKeys:       keys,
			Values:        valuesFor(maps, primary),
			ShouldMerge:   true,
		})
	}
	return mappings
}

func choosePrimary(keys []string, opts Options) string {
	for _, k := range keys {
		if containsAny(k, opts.PreferredMarkers) || !containsAny(k, opts.AndroidMarkers) {
			return k
		}
	}
	return keys[0]
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Apply rewrites maps according to mappings. Each output map (aligned with
// maps) holds one entry per mapping, keyed by its Label. The labels of merged
// groups are returned in mapping order.
func Apply(maps []*kvmap.Map, mappings []Mapping) ([]*kvmap.Map, []string) {
	out := make([]*kvmap.Map, len(maps))
	for i := range out {
		out[i] = kvmap.New()
	}

	var merged []string
	for _, mp := range mappings {
		label := mp.Label()
		if label != mp.PrimaryKey {
			merged = append(merged, label)
		}
		for i, v := range mp.Values {
			if i < len(out) {
				out[i].Set(label, v)
			}
		}
	}
	return out, merged
}

// IsComposite reports whether key is a merged display label.
func IsComposite(key string) bool {
	return strings.Contains(key, Separator)
}

// SplitKey returns the key a composite label is exported under: the first
// part without an Android prefix, else the first part. Plain keys are
// returned unchanged.
func SplitKey(key string, opts Options) string {
	if !IsComposite(key) {
		return key
	}
	parts := strings.Split(key, Separator)
	for _, p := range parts {
		if !hasAnyPrefix(p, opts.AndroidPrefixes) {
			return p
		}
	}
	return parts[0]
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Split reverses Apply for one map. Non-composite keys pass through, so
// Split is idempotent.
func Split(m *kvmap.Map, opts Options) *kvmap.Map {
	out := kvmap.New()
	m.Each(func(k, v string) {
		out.Set(SplitKey(k, opts), v)
	})
	return out
}

// ExpandedKeys lists the original keys behind each display key of m.
// Plain keys map to themselves.
func ExpandedKeys(m *kvmap.Map) map[string][]string {
	out := make(map[string][]string, m.Len())
	m.Each(func(k, _ string) {
		out[k] = strings.Split(k, Separator)
	})
	return out
}
