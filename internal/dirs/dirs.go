// Package dirs resolves the per-user directories bookprog reads its
// configuration from and writes its logs to.
package dirs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "bookprog"

// AppName returns the canonical application name for directory paths.
func AppName() string {
	return appName
}

// Paths holds the resolved application directories.
type Paths struct {
	Config string
	State  string
}

// LogFile is the log used when the full-screen UI owns the terminal and
// no file was configured.
func (p Paths) LogFile() string {
	return filepath.Join(p.State, appName+".log")
}

type env struct {
	goos   string
	getenv func(string) string
	home   func() (string, error)
}

func hostEnv() env {
	return env{goos: runtime.GOOS, getenv: os.Getenv, home: os.UserHomeDir}
}

// resolve picks the platform layout:
//
//	linux   $XDG_CONFIG_HOME/bookprog, $XDG_STATE_HOME/bookprog (~/.config, ~/.local/state)
//	darwin  ~/Library/Application Support/bookprog[/state]
//	other   %AppData%/bookprog, %LocalAppData%/bookprog/state
func (e env) resolve() (Paths, error) {
	home, herr := e.home()
	fromHome := func(elem ...string) (string, error) {
		if herr != nil {
			return "", herr
		}
		return filepath.Join(append([]string{home}, elem...)...), nil
	}
	orEnv := func(key string, fallback ...string) (string, error) {
		if v := e.getenv(key); v != "" {
			return filepath.Join(v, appName), nil
		}
		return fromHome(fallback...)
	}

	var p Paths
	var err error
	switch e.goos {
	case "darwin":
		if p.Config, err = fromHome("Library", "Application Support", appName); err != nil {
			return Paths{}, err
		}
		p.State = filepath.Join(p.Config, "state")
	case "windows":
		if p.Config, err = orEnv("APPDATA", "AppData", "Roaming", appName); err != nil {
			return Paths{}, err
		}
		p.State = filepath.Join(p.Config, "state")
		if la := e.getenv("LOCALAPPDATA"); la != "" {
			p.State = filepath.Join(la, appName, "state")
		}
	default:
		if p.Config, err = orEnv("XDG_CONFIG_HOME", ".config", appName); err != nil {
			return Paths{}, err
		}
		if p.State, err = orEnv("XDG_STATE_HOME", ".local", "state", appName); err != nil {
			return Paths{}, err
		}
	}
	return p, nil
}

// Resolve returns the directories for the running platform.
func Resolve() (Paths, error) {
	return hostEnv().resolve()
}

// ConfigDir returns the app's configuration directory.
func ConfigDir() (string, error) {
	p, err := Resolve()
	return p.Config, err
}

// StateDir returns the app's state directory, where logs are kept.
func StateDir() (string, error) {
	p, err := Resolve()
	return p.State, err
}

// DefaultLogFile returns Paths.LogFile for the running platform.
func DefaultLogFile() (string, error) {
	p, err := Resolve()
	if err != nil {
		return "", err
	}
	return p.LogFile(), nil
}

// Ensure creates the directory if it doesn't exist.
func Ensure(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// EnsureAll creates the config and state dirs.
func EnsureAll() error {
	p, err := Resolve()
	if err != nil {
		return err
	}
	return errors.Join(Ensure(p.Config), Ensure(p.State))
}
