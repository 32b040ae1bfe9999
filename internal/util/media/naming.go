package media

import (
	"fmt"
	"strings"

	"bookprog/internal/util"
)

// TrackBasename builds a safe base filename (without extension) for one
// track of a book. Part and track numbers are 1-based and zero padded so
// files sort in play order.
func TrackBasename(title string, part, track, parts int) string {
	name := util.SanitizeFilename(title)
	if parts > 1 {
		name += fmt.Sprintf(" - Part %02d", part)
	}
	return name + fmt.Sprintf(" - %03d", track)
}

// Extension normalises a container name or extension to ".ext" form.
// Empty input yields ".m4a".
func Extension(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return ".m4a"
	}
	if !strings.HasPrefix(format, ".") {
		format = "." + format
	}
	return format
}
