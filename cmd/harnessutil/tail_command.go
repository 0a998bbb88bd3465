package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"harnessutil/internal/logs"
	"harnessutil/internal/services"
)

func newTailCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var wait time.Duration
	var asTable bool

	cmd := &cobra.Command{
		Use:   "tail FILE",
		Short: "Print the last non-blank lines of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := args[0]
			if !cmd.Flags().Changed("lines") {
				lines = cfg.Tail.DefaultLines
			}
			if lines <= 0 {
				return services.Wrap(services.ErrValidation, "cli", "tail", "--lines must be positive", nil)
			}
			out := cmd.OutOrStdout()
			tableMode := asTable || isTerminal(out)

			if !follow {
				result, err := logs.ReadLastLines(path, lines)
				if err != nil {
					return err
				}
				printLines(out, result, 1, tableMode)
				return nil
			}

			if !cmd.Flags().Changed("wait") {
				wait = cfg.Tail.FollowWait()
			}
			return followFile(cmd.Context(), out, path, lines, wait)
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "Number of lines to keep (defaults to tail.default_lines)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are appended")
	cmd.Flags().DurationVar(&wait, "wait", 0, "How long each follow cycle waits for new lines (defaults to tail.follow_wait_seconds)")
	cmd.Flags().BoolVar(&asTable, "table", false, "Render lines as a numbered table")
	return cmd
}

// followFile prints the last lines of path and then every line appended until
// the context is cancelled or the process is interrupted.
func followFile(parent context.Context, out io.Writer, path string, lines int, wait time.Duration) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if wait <= 0 {
		wait = time.Second
	}

	result, err := logs.Tail(ctx, path, logs.TailOptions{Offset: -1, Limit: lines})
	if err != nil {
		return err
	}
	printLines(out, result.Lines, 0, false)

	offset := result.Offset
	for {
		result, err := logs.Tail(ctx, path, logs.TailOptions{Offset: offset, Follow: true, Wait: wait})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		printLines(out, result.Lines, 0, false)
		offset = result.Offset
		if ctx.Err() != nil {
			return nil
		}
	}
}

// printLines writes lines either plain or as a table numbered from start.
func printLines(out io.Writer, lines []string, start int, tableMode bool) {
	if !tableMode {
		for _, line := range lines {
			fmt.Fprintln(out, line)
		}
		return
	}
	rows := make([][]string, 0, len(lines))
	for i, line := range lines {
		rows = append(rows, []string{strconv.Itoa(start + i), line})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "Line"}, rows, []columnAlignment{alignRight, alignLeft}))
}
