// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

package pull

import "strings"

// Stage identifies which half of the pipeline a progress line belongs to.
type Stage string

const (
	StageDownload Stage = "DOWNLOAD"
	StageRestore  Stage = "RESTORE"
)

// toolPrefix maps each stage to the chatter prefix its tool emits.
var toolPrefix = map[Stage]string{
	StageDownload: "pg_dump:",
	StageRestore:  "pg_restore:",
}

// ProgressSink receives pipeline line events. Implementations decide how
// to render them; the pipeline never touches the terminal itself.
type ProgressSink interface {
	Update(stage Stage, line string)
}

// NopSink discards progress updates.
type NopSink struct{}

func (NopSink) Update(Stage, string) {}

// StatusText converts a raw tool line into the short status text shown
// next to the stage header: the tool prefix is stripped and long lines
// are cut at 95 characters.
func StatusText(stage Stage, line string) string {
	text := strings.TrimSpace(strings.ReplaceAll(line, toolPrefix[stage], ""))
	if len(text) > 100 {
		text = text[:95] + " ... "
	}
	return text
}
