// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/portalbilet/dotctl/internal/workload"
)

// pollInterval is the delay between workload polls in the live view.
const pollInterval = time.Second

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Live summary of running apps",
	Long: `Show a continuously refreshing table of the apps running in the
environment: canonical pod alias, spec args, replica count and the age
of the freshest instance. Apps without a ready instance are flagged
REBUILDING. Press q to quit.`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	envCfg, err := cfg.Env(flagEnv)
	if err != nil {
		return err
	}
	agg, err := newAggregator(envCfg)
	if err != nil {
		return err
	}

	m := newShowModel(agg, flagEnv)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

type appsLoadedMsg struct {
	apps map[string]*workload.App
	err  error
}

type pollTickMsg time.Time

type showModel struct {
	agg     *workload.Aggregator
	env     string
	apps    map[string]*workload.App
	err     error
	loading bool
	spinner spinner.Model
}

func newShowModel(agg *workload.Aggregator, env string) showModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(envColor(env))

	return showModel{
		agg:     agg,
		env:     env,
		loading: true,
		spinner: s,
	}
}

func (m showModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadApps)
}

// loadApps polls the cluster once. Each poll rebuilds the listing from
// scratch; there is no state to clean up on interrupt.
func (m showModel) loadApps() tea.Msg {
	apps, err := m.agg.List(context.Background(), m.env)
	return appsLoadedMsg{apps: apps, err: err}
}

func (m showModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case appsLoadedMsg:
		m.loading = false
		m.apps = msg.apps
		m.err = msg.err
		return m, tea.Tick(pollInterval, func(t time.Time) tea.Msg {
			return pollTickMsg(t)
		})

	case pollTickMsg:
		return m, m.loadApps

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m showModel) View() string {
	if m.loading {
		return fmt.Sprintf("%s loading %s apps...\n", m.spinner.View(), m.env)
	}
	if m.err != nil {
		return errorPanel(m.err.Error()) + "\n" + dimStyle.Render("press q to quit") + "\n"
	}
	if len(m.apps) == 0 {
		return envLabel(m.env) + dimStyle.Render("  no apps running") + "\n"
	}
	return renderAppsTable(m.env, m.apps) + dimStyle.Render("press q to quit") + "\n"
}
