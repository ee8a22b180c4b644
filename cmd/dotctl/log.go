// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/portalbilet/dotctl/internal/procio"
	"github.com/portalbilet/dotctl/internal/tail"
)

var logCmd = &cobra.Command{
	Use:   "log <app>",
	Short: "Follow an app's logs",
	Long: `Stream logs from all containers of the app's deployment, starting
24 hours back. The app name must match a container currently listed by
'dotctl show'.`,
	Args: cobra.ExactArgs(1),
	RunE: runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	tailer, err := newTailer()
	if err != nil {
		return err
	}
	return tailer.FollowLogs(cmd.Context(), args[0])
}

// newTailer wires a Tailer against the selected environment.
func newTailer() (*tail.Tailer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	envCfg, err := cfg.Env(flagEnv)
	if err != nil {
		return nil, err
	}
	agg, err := newAggregator(envCfg)
	if err != nil {
		return nil, err
	}
	return &tail.Tailer{
		Apps:  agg,
		Start: procio.ExecStarter{},
		// namespaces are named after the tiers
		Namespace:  flagEnv,
		Kubeconfig: envCfg.K8s,
		Out:        os.Stdout,
		Log:        logger,
	}, nil
}
