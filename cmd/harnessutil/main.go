package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"harnessutil/internal/services"
)

func main() {
	cmd, cmdCtx := newRootCommand()
	err := cmd.Execute()
	if closeErr := cmdCtx.close(); closeErr != nil {
		fmt.Fprintln(os.Stderr, "close log file:", closeErr)
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(services.ExitCode(err))
	}
}
