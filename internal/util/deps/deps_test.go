package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bookprog/internal/util"
)

func writeTool(t *testing.T, body string) string {
	t.Helper()
	bin := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return bin
}

func TestFindFFmpeg_CustomPath(t *testing.T) {
	bin := writeTool(t, "")
	got, err := FindFFmpeg(bin)
	if err != nil {
		t.Fatal(err)
	}
	if got != bin {
		t.Errorf("FindFFmpeg(%q) = %q", bin, got)
	}
}

func TestFind_FromPATH(t *testing.T) {
	bin := writeTool(t, "")
	t.Setenv("PATH", filepath.Dir(bin))
	got, err := Find("ffmpeg", "")
	if err != nil {
		t.Fatal(err)
	}
	if got != bin {
		t.Errorf("Find = %q, want %q", got, bin)
	}
}

func TestFindFFmpeg_Missing(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		custom string
	}{
		{"missing custom path", os.Getenv("PATH"), filepath.Join(t.TempDir(), "nope")},
		{"custom path is a directory", t.TempDir(), t.TempDir()},
		{"empty PATH", t.TempDir(), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PATH", tt.path)
			_, err := FindFFmpeg(tt.custom)
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

type fakeRunner struct {
	stdout string
	err    error
	got    util.CmdSpec
}

func (f *fakeRunner) Run(_ context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	f.got = spec
	return util.CmdResult{Stdout: []byte(f.stdout)}, f.err
}

func TestVersion(t *testing.T) {
	tests := []struct {
		name    string
		stdout  string
		err     error
		want    string
		wantErr bool
	}{
		{name: "first line", stdout: "ffmpeg version 6.1 Copyright\nbuilt with gcc\n", want: "ffmpeg version 6.1 Copyright"},
		{name: "no output", stdout: "  \n", want: "unknown"},
		{name: "run fails", err: errors.New("exit 1"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{stdout: tt.stdout, err: tt.err}
			got, err := Version(context.Background(), r, "/bin/ffmpeg")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Version = %q, want %q", got, tt.want)
			}
			if r.got.Path != "/bin/ffmpeg" || len(r.got.Args) != 1 || r.got.Args[0] != "-version" {
				t.Errorf("ran %q %q", r.got.Path, r.got.Args)
			}
		})
	}
}
