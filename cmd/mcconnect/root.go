package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/codemob-dev/mc-connect/internal/config"
	"github.com/codemob-dev/mc-connect/internal/logging"
	"github.com/codemob-dev/mc-connect/internal/protocol"
	"github.com/codemob-dev/mc-connect/internal/protocol/session"
	"github.com/spf13/cobra"
)

var errFailure = errors.New("agent answered failure")

type commandContext struct {
	configPath string
	addr       string
	timeout    time.Duration
}

func (c *commandContext) dial(ctx context.Context) (*session.Client, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	logging.Configure(logging.ProfileRuntime, cfg.LogOverride())
	addr := cfg.Client.Addr
	if strings.TrimSpace(c.addr) != "" {
		addr = c.addr
	}
	return session.Dial(ctx, addr, cfg.SessionConfig())
}

// callContext bounds one call by --timeout. Zero or less waits indefinitely.
func (c *commandContext) callContext(parent context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.timeout)
}

// roundTrip sends one request and prints the response tag.
func (c *commandContext) roundTrip(cmd *cobra.Command, msg protocol.Message) error {
	ctx := cmd.Context()
	client, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := c.callContext(ctx)
	defer cancel()
	reply, err := client.Call(ctx, msg)
	if err != nil {
		return err
	}
	return report(cmd.OutOrStdout(), reply)
}

func report(out io.Writer, reply protocol.Message) error {
	fmt.Fprintln(out, reply.Tag())
	if reply.Tag() == protocol.TagFailure {
		return errFailure
	}
	return nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "mcconnect",
		Short:         "Send requests to an mc-connect agent",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&ctx.addr, "addr", "", "Agent address (overrides client.addr)")
	rootCmd.PersistentFlags().DurationVar(&ctx.timeout, "timeout", 10*time.Second, "Time to wait for each response")

	rootCmd.AddCommand(newPrintCommand(ctx, "print", ""))
	rootCmd.AddCommand(newPrintCommand(ctx, "println", "\n"))
	rootCmd.AddCommand(newToastCommand(ctx))
	rootCmd.AddCommand(newInvokeCommand(ctx))
	rootCmd.AddCommand(newLaunchCommand(ctx))
	rootCmd.AddCommand(newBenchCommand(ctx))
	return rootCmd
}
