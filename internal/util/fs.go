package util

import (
	"errors"
	"os"
	"strings"
	"unicode"
)

// EnsureDir creates the directory path if it does not exist.
func EnsureDir(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// RemoveIfExists deletes the file if present.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SanitizeFilename replaces characters that are unsafe in file names on
// common filesystems and trims the result to 120 runes.
func SanitizeFilename(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`<>:"/\|?*`, r), unicode.IsControl(r):
			b.WriteByte('_')
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), ". ")
	if rs := []rune(out); len(rs) > 120 {
		out = strings.TrimRight(string(rs[:120]), ". ")
	}
	if out == "" {
		return "untitled"
	}
	return out
}
