// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/portalbilet/dotctl/internal/procio"
	"github.com/portalbilet/dotctl/internal/pull"
)

var pullCmd = &cobra.Command{
	Use:   "pull <alias>",
	Short: "Pull a remote database to the local Postgres",
	Long: `Dump the remote database behind <alias> and restore it over the local
database "{env}_{alias}".

WARNING: an existing local database of that name is dropped with FORCE
and recreated without confirmation.`,
	Args: cobra.ExactArgs(1),
	RunE: runPull,
}

func init() {
	rootCmd.AddCommand(pullCmd)
}

func runPull(cmd *cobra.Command, args []string) error {
	alias := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir, err := cacheDir()
	if err != nil {
		return err
	}

	// One scoped connection per pull; no pooling across invocations.
	admin, err := pull.NewLocalAdmin(cfg.PGLocal)
	if err != nil {
		return err
	}
	defer admin.Close()

	sink := &statusSink{w: os.Stderr, env: flagEnv}
	pipeline := &pull.Pipeline{
		Cfg:      cfg,
		CacheDir: dir,
		Prepare:  admin,
		Start:    procio.ExecStarter{},
		Sink:     sink,
		Log:      logger,
	}

	if err := pipeline.Pull(cmd.Context(), flagEnv, alias); err != nil {
		sink.finish()
		return err
	}
	sink.finish()

	fmt.Println(infoPanel(flagEnv, fmt.Sprintf(
		"Database %s was pulled to local: %s_%s", alias, flagEnv, alias,
	)))
	return nil
}

// statusSink renders pipeline progress as a single self-overwriting
// status line on stderr.
type statusSink struct {
	w      io.Writer
	env    string
	active bool
}

func (s *statusSink) Update(stage pull.Stage, line string) {
	s.active = true
	head := stageHeader(s.env, stage)
	fmt.Fprintf(s.w, "\r\x1b[2K%s %s", head, dimStyle.Render(pull.StatusText(stage, line)))
}

// finish terminates the status line so later output starts clean.
func (s *statusSink) finish() {
	if s.active {
		fmt.Fprint(s.w, "\r\x1b[2K")
	}
}
