package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newNotifyCommand(ctx *commandContext) *cobra.Command {
	var channel string
	var message string
	var webhook string

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Post a message to the chat webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			svc, err := ctx.notifier(cmd)
			if err != nil {
				return err
			}
			target := strings.TrimSpace(channel)
			if target == "" {
				target = cfg.Notifications.DefaultChannel
			}
			if err := svc.Send(cmd.Context(), target, message, webhook); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Notification sent to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "", "Destination channel (defaults to notifications.default_channel)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Message text")
	cmd.Flags().StringVar(&webhook, "webhook", "", "Webhook URL overriding the configured one")
	_ = cmd.MarkFlagRequired("message")

	cmd.AddCommand(newNotifyTestCommand(ctx))
	return cmd
}

func newNotifyTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a test notification to the default channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.notifier(cmd)
			if err != nil {
				return err
			}
			if err := svc.TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}
