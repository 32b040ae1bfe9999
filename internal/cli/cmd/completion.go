package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

type completionShell struct {
	name  string
	load  string
	write func(root *cobra.Command, w io.Writer) error
}

var completionShells = []completionShell{
	{"bash", "source <(bookprog completion bash)", (*cobra.Command).GenBashCompletion},
	{"zsh", `bookprog completion zsh > "${fpath[1]}/_bookprog"`, (*cobra.Command).GenZshCompletion},
	{"fish", "bookprog completion fish | source", func(root *cobra.Command, w io.Writer) error {
		return root.GenFishCompletion(w, true)
	}},
	{"powershell", "bookprog completion powershell | Out-String | Invoke-Expression", (*cobra.Command).GenPowerShellCompletionWithDesc},
}

func newCompletionCmd() *cobra.Command {
	names := make([]string, 0, len(completionShells))
	var long strings.Builder
	long.WriteString("To load completions:\n")
	for _, s := range completionShells {
		names = append(names, s.name)
		fmt.Fprintf(&long, "\n%s:\n\t%s\n", s.name, s.load)
	}

	return &cobra.Command{
		Use:                   "completion [" + strings.Join(names, "|") + "]",
		Short:                 "Generate shell completion scripts",
		Long:                  long.String(),
		DisableFlagsInUseLine: true,
		ValidArgs:             names,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		// Completion output must not depend on config or logging.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			i := slices.IndexFunc(completionShells, func(s completionShell) bool { return s.name == args[0] })
			if i < 0 {
				return &ExitError{Code: ExitCLIError, Err: fmt.Errorf("unsupported shell %q", args[0])}
			}
			return completionShells[i].write(cmd.Root(), cmd.OutOrStdout())
		},
	}
}
