// Package deps locates the external tools bookprog drives.
package deps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"bookprog/internal/util"
)

// ErrNotFound is wrapped by every lookup failure.
var ErrNotFound = errors.New("tool not found")

// Find resolves tool. A non-empty custom value is tried as a file path
// first and then as a name in PATH; otherwise tool itself is looked up.
func Find(tool, custom string) (string, error) {
	if custom == "" {
		p, err := exec.LookPath(tool)
		if err != nil {
			return "", fmt.Errorf("%w: %s is not in PATH, please install it", ErrNotFound, tool)
		}
		return p, nil
	}
	if fi, err := os.Stat(custom); err == nil && !fi.IsDir() {
		return custom, nil
	}
	if p, err := exec.LookPath(custom); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%w: no %s at %q", ErrNotFound, tool, custom)
}

// FindFFmpeg resolves ffmpeg, preferring customPath when set.
func FindFFmpeg(customPath string) (string, error) {
	return Find("ffmpeg", customPath)
}

// Version runs `path -version` and returns the first line of its output,
// or "unknown" when the tool prints nothing recognisable.
func Version(ctx context.Context, runner util.CmdRunner, path string) (string, error) {
	if runner == nil {
		runner = util.NewDefaultRunner()
	}
	res, err := runner.Run(ctx, util.CmdSpec{Path: path, Args: []string{"-version"}, CaptureStdout: true})
	if err != nil {
		return "", fmt.Errorf("%s -version: %w", path, err)
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(res.Stdout)), "\n")
	if first == "" {
		return "unknown", nil
	}
	return strings.TrimSpace(first), nil
}
