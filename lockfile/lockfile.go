// Package lockfile implements stringsmith.lock, which records MD5 checksums
// of every value per language at import and export time. Comparing a
// language column against the lock shows which keys were added, edited or
// removed since the last sync with the files on disk.
//
// The lock file is stored next to the project file.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/stringsmith/kvmap"
)

// LockFileName is the default lock file name.
const LockFileName = "stringsmith.lock"

// Version is the lock file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// LockFile represents the stringsmith.lock file structure.
type LockFile struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"` // lang -> key -> md5

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// Changes lists the keys of a language that differ from the lock.
type Changes struct {
	Added    []string
	Modified []string
	Removed  []string
}

// Empty reports whether there are no changes.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Modified) == 0 && len(c.Removed) == 0
}

// String formats the change counts.
func (c Changes) String() string {
	return fmt.Sprintf("%d added, %d modified, %d removed", len(c.Added), len(c.Modified), len(c.Removed))
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads a lock file from the given directory.
// Returns an empty lock file if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.path = path

	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}

	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// Record replaces the checksums of lang with the values of m.
func (lf *LockFile) Record(lang string, m *kvmap.Map) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	sums := make(map[string]string, m.Len())
	m.Each(func(k, v string) {
		sums[k] = Hash(v)
	})
	lf.Checksums[lang] = sums
}

// IsChanged reports whether the value of key in lang is new or differs from
// the recorded one.
func (lf *LockFile) IsChanged(lang, key, value string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	old, ok := lf.Checksums[lang][key]
	return !ok || old != Hash(value)
}

// Diff compares m with the checksums recorded for lang. Added and Modified
// follow the order of m; Removed is sorted. A language that was never
// recorded reports every key as added.
func (lf *LockFile) Diff(lang string, m *kvmap.Map) Changes {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	var c Changes
	recorded := lf.Checksums[lang]
	m.Each(func(k, v string) {
		old, ok := recorded[k]
		switch {
		case !ok:
			c.Added = append(c.Added, k)
		case old != Hash(v):
			c.Modified = append(c.Modified, k)
		}
	})
	for k := range recorded {
		if !m.Has(k) {
			c.Removed = append(c.Removed, k)
		}
	}
	sort.Strings(c.Removed)
	return c
}

// Clean removes checksums of languages that are not in langs.
func (lf *LockFile) Clean(langs []string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	valid := make(map[string]bool, len(langs))
	for _, l := range langs {
		valid[l] = true
	}
	for l := range lf.Checksums {
		if !valid[l] {
			delete(lf.Checksums, l)
		}
	}
}

// RemoveLang removes all checksums for lang.
func (lf *LockFile) RemoveLang(lang string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	delete(lf.Checksums, lang)
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns the number of languages and total keys in the lock file.
func (lf *LockFile) Stats() (langs, keys int) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	langs = len(lf.Checksums)
	for _, m := range lf.Checksums {
		keys += len(m)
	}
	return
}

// Langs returns the sorted list of recorded languages.
func (lf *LockFile) Langs() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	langs := make([]string, 0, len(lf.Checksums))
	for l := range lf.Checksums {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// Summary returns a human-readable summary string.
func (lf *LockFile) Summary() string {
	langs, keys := lf.Stats()
	if langs == 0 {
		return "empty"
	}

	var parts []string
	for _, l := range lf.Langs() {
		n := len(lf.Checksums[l])
		parts = append(parts, fmt.Sprintf("%s: %d keys", l, n))
	}
	return fmt.Sprintf("%d languages, %d keys (%s)", langs, keys, strings.Join(parts, ", "))
}
