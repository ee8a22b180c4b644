// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	sigyaml "sigs.k8s.io/yaml"
)

var configCmd = &cobra.Command{
	Use:   "config <app>",
	Short: "Print an app's effective configuration",
	Long: `Read config.yml out of the app's canonical container and print it.
The app name must match a container currently listed by 'dotctl show'.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	tailer, err := newTailer()
	if err != nil {
		return err
	}

	doc, err := tailer.ShowConfig(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out, err := sigyaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	fmt.Print(dimStyle.Render(string(out)))
	fmt.Println()
	return nil
}
