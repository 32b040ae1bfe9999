package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"bookprog/internal/config"
	"bookprog/internal/logging"
	"bookprog/internal/status"
)

const (
	ExitOK           = 0
	ExitCLIError     = 1
	ExitMissingDep   = 2
	ExitSourceError  = 3
	ExitCommandError = 4
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// app is the per-run state assembled before any subcommand runs.
type app struct {
	cfg        config.Config
	configFile string
	captions   status.Captions
	log        *slog.Logger
	closer     io.Closer
	tui        bool
	width      int
}

// close releases the log sink. It is safe to call more than once.
func (a *app) close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

type ctxKey struct{}

// appFrom returns the state set up for this run, or defaults when setup
// was skipped.
func appFrom(cmd *cobra.Command) *app {
	if a, ok := cmd.Context().Value(ctxKey{}).(*app); ok && a.log != nil {
		return a
	}
	return &app{log: logging.NullLogger(), captions: status.DefaultCaptions(), width: 80}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "bookprog",
		Short:             "Progress display for audiobook conversion",
		Long:              "bookprog folds the progress of concurrent audiobook conversions into two bars and one status line that always fits the terminal. Feed it a recorded script, a simulated workload, or a live ffmpeg run.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupApp,
	}

	// Persistent flags available to all subcommands
	bindGlobalFlags(root.PersistentFlags())

	root.AddCommand(newReplayCmd())
	root.AddCommand(newDemoCmd())
	root.AddCommand(newExecCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

func bindGlobalFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Config file (default: config.yaml in the config dir)")
	fs.BoolP("verbose", "v", false, "Log debug details and subprocess output")
	fs.Bool("no-ui", false, "Disable the full-screen UI; print status lines instead")
	fs.Int("width", 0, "Status line width in columns (0: terminal width)")
	fs.String("log-file", "", "Write logs to this file, rotated by size")
	fs.String("log-level", "info", "Log level: debug, info, warn, error")
}

func setupApp(cmd *cobra.Command, _ []string) error {
	v, err := config.Init(cmd.Root())
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	if cfg.Verbose {
		cfg.Log.Level = "debug"
	}
	caps, err := cfg.Captions.Resolve()
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}

	a, ok := cmd.Context().Value(ctxKey{}).(*app)
	if !ok {
		a = &app{}
		cmd.SetContext(context.WithValue(cmd.Context(), ctxKey{}, a))
	}
	*a = app{cfg: cfg, configFile: v.ConfigFileUsed(), captions: caps}
	a.tui = !cfg.NoUI && isTerminal()
	a.width = cfg.UI.LabelWidth
	if a.width <= 0 {
		a.width = terminalWidth()
	}

	// The full-screen UI owns the terminal, so logs only go to a file.
	var console io.Writer = cmd.ErrOrStderr()
	if a.tui {
		console = nil
	}
	a.log, a.closer, err = logging.Setup(cfg.Log, console)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("logging: %w", err)}
	}
	a.log.Debug("starting", "command", cmd.CommandPath(), "tui", a.tui, "width", a.width)
	return nil
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	return run(ctx, newRootCmd(), &app{})
}

// run executes root with the app slot setupApp fills in. The log sink is
// closed whether or not the command succeeded.
func run(ctx context.Context, root *cobra.Command, a *app) error {
	err := root.ExecuteContext(context.WithValue(ctx, ctxKey{}, a))
	if cerr := a.close(); cerr != nil && err == nil {
		err = &ExitError{Code: ExitCLIError, Err: fmt.Errorf("close log: %w", cerr)}
	}
	return err
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// commandError maps a producer failure to an exit code. Interrupts are
// reported as such rather than as the error that surfaced first.
func commandError(code int, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return &ExitError{Code: code, Err: errors.New("interrupted")}
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee
	}
	return &ExitError{Code: code, Err: err}
}
