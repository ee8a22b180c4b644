// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/portalbilet/dotctl/internal/config"
	"github.com/portalbilet/dotctl/internal/pull"
	"github.com/portalbilet/dotctl/internal/workload"
)

var (
	stageColor = lipgloss.Color("28")  // green
	prodColor  = lipgloss.Color("196") // red

	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	headStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("101"))

	rebuildingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")).Blink(true)

	errorPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("160")).
			Padding(0, 1)

	infoPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	errorLabelStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("160")).
			Padding(0, 1)

	titleCaser = cases.Upper(language.English)
)

// envColor maps an environment to its accent color: stage green, prod
// red, so a prod session is never mistaken for stage.
func envColor(env string) lipgloss.Color {
	if env == config.EnvProd {
		return prodColor
	}
	return stageColor
}

// envLabel renders the environment badge shown in headers.
func envLabel(env string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255")).
		Background(envColor(env)).
		Padding(0, 1).
		Render(titleCaser.String(env))
}

// stageHeader renders the bold pipeline stage name in the environment's
// accent color.
func stageHeader(env string, stage pull.Stage) string {
	return lipgloss.NewStyle().Bold(true).Foreground(envColor(env)).Render(string(stage))
}

// errorPanel frames the single fatal message printed before exit.
func errorPanel(msg string) string {
	return errorPanelStyle.Render(errorLabelStyle.Render("ERROR") + " " + msg)
}

// infoPanel frames an informational message under the environment badge.
func infoPanel(env, text string) string {
	return infoPanelStyle.Render(envLabel(env) + " " + text)
}

// renderAppsTable renders the workload summary. Representative fields
// come straight from the aggregation; only display truncation happens
// here.
func renderAppsTable(env string, apps map[string]*workload.App) string {
	var b strings.Builder

	b.WriteString(envLabel(env))
	b.WriteString(headStyle.Render("  app-alias"))
	b.WriteString("\n")
	b.WriteString(headStyle.Render(fmt.Sprintf(
		"%-50s %-33s %6s %18s", "app", "spec args", "shards", "deployed",
	)))
	b.WriteString("\n")

	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		app := apps[name]
		b.WriteString(fmt.Sprintf(
			"%-50s %-33s %6d %18s\n",
			appAliasCell(name, app.Alias),
			execArgsCell(app.ExecArgs),
			app.Instances,
			deployedCell(app),
		))
	}

	return b.String()
}

// appAliasCell shows the app name with its pod alias dimmed: the alias
// suffix when the name prefixes it, the whole alias in parens otherwise.
func appAliasCell(name, alias string) string {
	if strings.Contains(alias, name) {
		return activeStyle.Render(name) + dimStyle.Render(strings.Replace(alias, name, "", 1))
	}
	return activeStyle.Render(name) + dimStyle.Render("("+alias+")")
}

func execArgsCell(args string) string {
	if args == "" {
		return dimStyle.Render("-")
	}
	if len(args) > 30 {
		args = args[:30] + "..."
	}
	return dimStyle.Render(args)
}

func deployedCell(app *workload.App) string {
	if app.Rebuilding {
		return rebuildingStyle.Render("REBUILDING")
	}
	return app.Deployed
}
