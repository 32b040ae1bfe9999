package format

import (
	"fmt"
	"math"
	"strconv"
)

var byteUnits = [...]string{"KB", "MB", "GB", "TB", "PB"}

// HumanizeBytes converts a byte count into a human-readable string (e.g., "1.5 MB").
// Negative counts are shown as "0 B".
func HumanizeBytes(b int64) string {
	const unit = 1024
	if b < 0 {
		b = 0
	}
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit && exp < len(byteUnits)-1; n /= unit {
		div *= unit
		exp++
	}
	var buf [24]byte
	s := strconv.AppendFloat(buf[:0], float64(b)/float64(div), 'f', 1, 64)
	return string(s) + " " + byteUnits[exp]
}

// Duration renders seconds as H:MM:SS, or M:SS under an hour. Unknown
// (non-positive or NaN) lengths render as "?".
func Duration(sec float64) string {
	if !(sec > 0) || math.IsInf(sec, 0) {
		return "?"
	}
	total := int64(sec + 0.5)
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
