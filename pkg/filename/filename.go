// Package filename normalizes client supplied upload names
package filename

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ImageExtensions lists the suffixes the gallery shows, lower-cased
var ImageExtensions = []string{".png", ".jpg", ".jpeg"}

// Sanitize reduces a client supplied filename to a safe flat name.
// The result is NFKD-normalized ASCII containing only letters, digits,
// '_', '.' and '-', with whitespace runs collapsed to '_' and leading or
// trailing dots and underscores removed. It may be empty.
func Sanitize(name string) string {
	name = norm.NFKD.String(name)

	ascii := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		if name[i] < 0x80 {
			ascii = append(ascii, name[i])
		}
	}
	name = string(ascii)

	name = strings.ReplaceAll(name, "/", " ")
	name = strings.Join(strings.FieldsFunc(name, isASCIISpace), "_")

	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '_', r == '.', r == '-':
			return r
		}
		return -1
	}, name)

	return strings.Trim(name, "._")
}

// isASCIISpace matches the characters str.split treats as whitespace in
// the ASCII range, including the information separators 0x1c-0x1f.
func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r', 0x1c, 0x1d, 0x1e, 0x1f:
		return true
	}
	return false
}

// IsImage reports whether name carries a gallery image extension
func IsImage(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, allowed := range ImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
