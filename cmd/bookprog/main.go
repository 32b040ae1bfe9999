package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	bookprogcmd "bookprog/internal/cli/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bookprogcmd.Execute(ctx); err != nil {
		var ee *bookprogcmd.ExitError
		if errors.As(err, &ee) {
			if ee.Err != nil {
				fmt.Fprintln(os.Stderr, ee.Err)
			}
			stop()
			os.Exit(ee.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(bookprogcmd.ExitCLIError)
	}
}
