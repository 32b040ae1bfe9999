package pipeline

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

const samplePlan = `
out_dir: /out
format: m4b
max_size_mb: 50
books:
  - title: "Moby-Dick"
    parts:
      - tracks:
          - {input: a.aax, duration: 3600, chapters: [1, 2]}
          - {input: b.aax}
      - tracks:
          - {args: [-i, c.aax, -c, copy, /custom/c.m4b]}
  - title: Emma
    parts:
      - tracks:
          - {input: e.mp3, output: /elsewhere/e.m4a}
`

func TestLoadPlan(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/plans/batch.yaml", []byte(samplePlan), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadPlan(fs, "/plans/batch.yaml")
	if err != nil {
		t.Fatal(err)
	}

	parts, tracks := p.Totals()
	if parts != 3 || tracks != 4 {
		t.Errorf("Totals() = %d, %d; want 3, 4", parts, tracks)
	}
	if n := p.Books[0].Chapters(); n != 2 {
		t.Errorf("Chapters() = %d, want 2", n)
	}
	if n := p.Books[1].Chapters(); n != 0 {
		t.Errorf("Chapters() = %d, want 0", n)
	}
}

func TestPlan_TrackArgs(t *testing.T) {
	p, err := ParsePlan([]byte(samplePlan))
	if err != nil {
		t.Fatal(err)
	}
	moby, emma := p.Books[0], p.Books[1]

	tests := []struct {
		name       string
		book       Book
		part, trk  int
		wantOut    string
		wantBitArg string
	}{
		{name: "size budget", book: moby, part: 0, trk: 0, wantOut: "/out/Moby-Dick - Part 01 - 001.m4b", wantBitArg: "116k"},
		{name: "unknown duration", book: moby, part: 0, trk: 1, wantOut: "/out/Moby-Dick - Part 01 - 002.m4b", wantBitArg: "64k"},
		{name: "explicit args", book: moby, part: 1, trk: 0, wantOut: "/custom/c.m4b"},
		{name: "explicit output", book: emma, part: 0, trk: 0, wantOut: "/elsewhere/e.m4a", wantBitArg: "64k"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, out := p.TrackArgs(tt.book, tt.part, tt.trk)
			if out != filepath.FromSlash(tt.wantOut) {
				t.Errorf("output = %q, want %q", out, tt.wantOut)
			}
			if args[len(args)-1] != out {
				t.Errorf("last arg = %q, want output %q", args[len(args)-1], out)
			}
			if tt.wantBitArg != "" && !strings.Contains(strings.Join(args, " "), "-b:a "+tt.wantBitArg) {
				t.Errorf("args %v missing -b:a %s", args, tt.wantBitArg)
			}
		})
	}
}

func TestParsePlan_Invalid(t *testing.T) {
	tests := map[string]string{
		"no books":      "books: []",
		"no title":      "books: [{parts: [{tracks: [{input: a}]}]}]",
		"duplicate":     "books: [{title: A, parts: [{tracks: [{input: a}]}]}, {title: A, parts: [{tracks: [{input: b}]}]}]",
		"no parts":      "books: [{title: A}]",
		"empty part":    "books: [{title: A, parts: [{tracks: []}]}]",
		"no input":      "books: [{title: A, parts: [{tracks: [{duration: 3}]}]}]",
		"negative":      "books: [{title: A, parts: [{tracks: [{input: a, duration: -1}]}]}]",
		"bad bitrate":   "bitrate: -5\nbooks: [{title: A, parts: [{tracks: [{input: a}]}]}]",
		"not yaml list": "books: 3",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParsePlan([]byte(in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
