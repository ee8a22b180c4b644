// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

// Package tail streams logs and configuration out of running app
// containers through kubectl subprocesses.
package tail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	sigyaml "sigs.k8s.io/yaml"

	"github.com/portalbilet/dotctl/internal/clierr"
	"github.com/portalbilet/dotctl/internal/procio"
	"github.com/portalbilet/dotctl/internal/workload"
)

// waitTimeout bounds the post-stream wait on kubectl exit.
const waitTimeout = 3 * time.Second

// configFile is the conventional config location inside app containers.
const configFile = "./config.yml"

// Tailer resolves an app name against the live workload listing and
// spawns a single kubectl subprocess against it. Streams are not
// retried; a broken pipe ends the command.
type Tailer struct {
	Apps       *workload.Aggregator
	Start      procio.Starter
	Kubeconfig string
	Namespace  string
	Out        io.Writer
	Log        zerolog.Logger
}

// resolve returns the app record for name, or app_not_found listing the
// names present in the current poll.
func (t *Tailer) resolve(ctx context.Context, name string) (*workload.App, error) {
	apps, err := t.Apps.List(ctx, t.Namespace)
	if err != nil {
		return nil, err
	}
	app, ok := apps[name]
	if !ok {
		return nil, clierr.NotFound(clierr.KindAppNotFound, name, workload.Names(apps))
	}
	return app, nil
}

// FollowLogs streams the deployment's logs, all containers, last 24h,
// forwarding each line verbatim.
func (t *Tailer) FollowLogs(ctx context.Context, name string) error {
	if _, err := t.resolve(ctx, name); err != nil {
		return err
	}

	proc, err := t.Start.Start("kubectl", LogArgs(t.Kubeconfig, t.Namespace, name), nil)
	if err != nil {
		return fmt.Errorf("spawn kubectl logs: %w", err)
	}

	streamErr := proc.Lines(func(line string) error {
		_, werr := fmt.Fprintln(t.Out, line)
		return werr
	})
	t.waitQuietly(proc)
	return streamErr
}

// ShowConfig captures the app's config file from inside its canonical
// pod and parses it as a structured document.
func (t *Tailer) ShowConfig(ctx context.Context, name string) (map[string]interface{}, error) {
	app, err := t.resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	proc, err := t.Start.Start("kubectl", ConfigArgs(t.Kubeconfig, t.Namespace, app.Alias, name), nil)
	if err != nil {
		return nil, fmt.Errorf("spawn kubectl exec: %w", err)
	}

	var buf strings.Builder
	streamErr := proc.Lines(func(line string) error {
		buf.WriteString(line)
		buf.WriteByte('\n')
		return nil
	})
	t.waitQuietly(proc)
	if streamErr != nil {
		return nil, fmt.Errorf("capture config from %s: %w", app.Alias, streamErr)
	}

	var doc map[string]interface{}
	if err := sigyaml.Unmarshal([]byte(buf.String()), &doc); err != nil {
		return nil, fmt.Errorf("parse config from %s: %w", app.Alias, err)
	}
	return doc, nil
}

func (t *Tailer) waitQuietly(proc procio.Process) {
	if err := proc.Wait(waitTimeout); err != nil && !errors.Is(err, procio.ErrWaitTimeout) {
		t.Log.Debug().Err(err).Msg("kubectl wait")
	}
}

// LogArgs builds the kubectl argument list for following an app's logs.
func LogArgs(kubeconfig, namespace, app string) []string {
	return []string{
		"--kubeconfig", kubeconfig,
		"-n", namespace,
		"logs", "-f", "deployment/" + app,
		"--all-containers=true",
		"--since=24h",
	}
}

// ConfigArgs builds the kubectl argument list for reading the config
// file out of one container.
func ConfigArgs(kubeconfig, namespace, podAlias, container string) []string {
	return []string{
		"--kubeconfig", kubeconfig,
		"-n", namespace,
		"exec", podAlias,
		"-c", container,
		"--", "cat", configFile,
	}
}
