package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"harnessutil/internal/fileutil"
	"harnessutil/internal/logging"
)

func newResetCommand(ctx *commandContext) *cobra.Command {
	var locked bool

	cmd := &cobra.Command{
		Use:   "reset FILE...",
		Short: "Empty files, creating them and their directories when missing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			logger = logging.NewComponentLogger(logger, "reset")
			useLock := locked || cfg.Files.LockResets

			for _, path := range args {
				if useLock {
					err = fileutil.EmptyFileLocked(cmd.Context(), path)
				} else {
					err = fileutil.EmptyFile(path)
				}
				if err != nil {
					logger.Error("reset failed", slog.String(logging.FieldPath, path), logging.Error(err))
					return err
				}
				logger.Debug("file reset", slog.String(logging.FieldPath, path), slog.Bool("locked", useLock))
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&locked, "lock", false, "Hold <file>.lock while resetting (also enabled by files.lock_resets)")
	return cmd
}
