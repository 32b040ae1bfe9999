package bitrate

const (
	// MinAudioKbps is the lowest bitrate that keeps speech intelligible.
	MinAudioKbps = 32
	// MaxAudioKbps is the highest bitrate worth spending on spoken audio.
	MaxAudioKbps = 256
)

// AudioKbps calculates the audio bitrate (kbps) that fits a track of
// durationSec into maxSizeMB, clamped to [MinAudioKbps, MaxAudioKbps].
// An unknown duration or size yields fallback, clamped the same way.
func AudioKbps(maxSizeMB int, durationSec float64, fallback int) int {
	if durationSec <= 0 || maxSizeMB <= 0 {
		return Clamp(fallback, MinAudioKbps, MaxAudioKbps)
	}
	maxBytes := int64(maxSizeMB) * 1024 * 1024
	kbps := int((float64(maxBytes*8) / durationSec) / 1000)
	return Clamp(kbps, MinAudioKbps, MaxAudioKbps)
}

// Clamp returns v constrained to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
