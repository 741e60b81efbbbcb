// Package security holds the file-safety helpers for evidence handling.
// Stored filenames are always generated, never derived from user input,
// which closes off path traversal through uploaded names.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

const maxOriginalNameLen = 255

// SecureFilename builds a collision-resistant stored name from a UUIDv4,
// a nanosecond timestamp, and the original extension only.
func SecureFilename(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		ext = ""
	}
	return fmt.Sprintf("%s-%d%s", uuid.NewString(), time.Now().UnixNano(), ext)
}

// SanitizeOriginalName strips path components and control characters from
// the user-supplied filename before it is stored as display metadata.
func SanitizeOriginalName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	clean := strings.TrimSpace(b.String())

	if clean == "" || clean == "." || clean == ".." {
		clean = "unnamed"
	}
	if len(clean) > maxOriginalNameLen {
		clean = clean[len(clean)-maxOriginalNameLen:]
	}
	return clean
}
