package main

import (
	"fmt"
	"strings"

	"github.com/codemob-dev/mc-connect/internal/protocol"
	"github.com/spf13/cobra"
)

func newPrintCommand(ctx *commandContext, use, suffix string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <text>...",
		Short: "Ask the agent to print text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.roundTrip(cmd, protocol.NewText(strings.Join(args, " ")+suffix))
		},
	}
}

func newToastCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toast <title> <body>",
		Short: "Ask the agent to raise a notification",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.roundTrip(cmd, protocol.NewNotify(args[0], args[1]))
		},
	}
}

func newInvokeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "invoke <class> <method> <signature>",
		Short: "Ask the agent to invoke a method",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.roundTrip(cmd, protocol.NewInvoke(args[0], args[1], args[2]))
		},
	}
}

func newLaunchCommand(ctx *commandContext) *cobra.Command {
	var dir string
	var env []string
	var unset []string

	cmd := &cobra.Command{
		Use:   "launch <path> [args...]",
		Short: "Ask the agent to start a program",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := protocol.NewLaunch(args[0], args[1:]...)
			req.Dir = dir
			for _, kv := range env {
				key, value, ok := strings.Cut(kv, "=")
				if !ok || key == "" {
					return fmt.Errorf("--env expects KEY=VALUE, got %q", kv)
				}
				req = req.SetEnv(key, value)
			}
			for _, key := range unset {
				req = req.UnsetEnv(key)
			}
			return ctx.roundTrip(cmd, req)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Working directory for the program")
	cmd.Flags().StringArrayVar(&env, "env", nil, "Set an environment variable (KEY=VALUE, repeatable)")
	cmd.Flags().StringArrayVar(&unset, "unset", nil, "Remove an environment variable (repeatable)")
	return cmd
}
