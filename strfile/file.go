package strfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Ext is the file extension of Apple strings tables.
const Ext = ".strings"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile reads a .strings file as text. A UTF-8 byte order mark is removed.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(bytes.TrimPrefix(data, utf8BOM)), nil
}

// ParseFile reads and structurally parses a .strings file from disk.
func ParseFile(path string) (*ParsedFile, error) {
	content, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseWithStructure(content), nil
}

// WriteFile writes content to path, creating parent directories with 0755
// permissions.
func WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// IsStringsFile reports whether name has the .strings extension
// (case-insensitive).
func IsStringsFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), Ext)
}
