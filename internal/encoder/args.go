package encoder

// ProgressArgs makes sure ffmpeg writes machine-readable progress to
// stdout. The flags go in front of the last argument, which ffmpeg
// treats as the output file. Existing -progress flags are left alone.
func ProgressArgs(args []string) []string {
	for _, a := range args {
		if a == "-progress" {
			return args
		}
	}
	out := make([]string, 0, len(args)+3)
	if len(args) == 0 {
		return append(out, "-progress", "pipe:1", "-nostats")
	}
	out = append(out, args[:len(args)-1]...)
	out = append(out, "-progress", "pipe:1", "-nostats")
	return append(out, args[len(args)-1])
}
