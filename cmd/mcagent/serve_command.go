package main

import (
	"github.com/codemob-dev/mc-connect/internal/handler"
	"github.com/codemob-dev/mc-connect/internal/server"
	"github.com/spf13/cobra"
)

func newServeCommand(configPath *string) *cobra.Command {
	var addr string
	var metricsAddr string
	var single bool
	var allowLaunch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept connections and answer requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Agent.Addr = addr
			}
			if flags.Changed("metrics-addr") {
				cfg.Agent.MetricsAddr = metricsAddr
			}
			if flags.Changed("single") {
				cfg.Agent.SingleConnection = single
			}
			if flags.Changed("allow-launch") {
				cfg.Agent.AllowLaunch = allowLaunch
			}

			mux := handler.NewAgentMux(handler.Options{
				Out:           cmd.OutOrStdout(),
				NotifyCommand: cfg.Agent.NotifyCommand,
				AllowLaunch:   cfg.Agent.AllowLaunch,
				LaunchWait:    cfg.Agent.LaunchWait,
			})
			srv, err := server.New(server.Config{
				Addr:             cfg.Agent.Addr,
				SingleConnection: cfg.Agent.SingleConnection,
				MetricsAddr:      cfg.Agent.MetricsAddr,
				Session:          cfg.SessionConfig(),
			}, mux)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides agent.addr)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics on this address")
	cmd.Flags().BoolVar(&single, "single", true, "Serve one connection, then exit")
	cmd.Flags().BoolVar(&allowLaunch, "allow-launch", false, "Answer launch requests by starting programs")
	return cmd
}
