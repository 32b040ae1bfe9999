package status

import "bookprog/internal/progress"

// Captions is the string table used to build the status line. The strings
// are opaque templates supplied by the caller.
type Captions struct {
	Step    string
	Part    string
	Chapter string
	Track   string
	Phases  map[progress.Phase]string
}

// DefaultCaptions returns the built-in English table.
func DefaultCaptions() Captions {
	return Captions{
		Step:    "step",
		Part:    "part",
		Chapter: "ch.",
		Track:   "tr.",
		Phases: map[progress.Phase]string{
			progress.PhaseAnalysing:  "analysing",
			progress.PhaseDecrypting: "decrypting",
			progress.PhaseDecoding:   "decoding",
			progress.PhaseEncoding:   "encoding",
			progress.PhaseSplitting:  "splitting",
			progress.PhaseTagging:    "tagging",
			progress.PhaseCopying:    "copying",
		},
	}
}

// Phase returns the caption for p, falling back to its name.
func (c Captions) Phase(p progress.Phase) string {
	if s, ok := c.Phases[p]; ok && s != "" {
		return s
	}
	return p.String()
}

// Merge returns c with every non-empty field of o applied on top.
func (c Captions) Merge(o Captions) Captions {
	if o.Step != "" {
		c.Step = o.Step
	}
	if o.Part != "" {
		c.Part = o.Part
	}
	if o.Chapter != "" {
		c.Chapter = o.Chapter
	}
	if o.Track != "" {
		c.Track = o.Track
	}
	if len(o.Phases) > 0 {
		phases := make(map[progress.Phase]string, len(c.Phases)+len(o.Phases))
		for k, v := range c.Phases {
			phases[k] = v
		}
		for k, v := range o.Phases {
			if v != "" {
				phases[k] = v
			}
		}
		c.Phases = phases
	}
	return c
}
