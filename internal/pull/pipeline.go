// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

package pull

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/portalbilet/dotctl/internal/clierr"
	"github.com/portalbilet/dotctl/internal/config"
	"github.com/portalbilet/dotctl/internal/procio"
)

// procWaitTimeout bounds the wait for subprocess exit after its output
// stream closes. Exceeding it is not escalated; the wait result is only
// logged.
const procWaitTimeout = 3 * time.Second

// Pipeline orchestrates one database pull: resolve the alias, prepare
// the local database, dump the remote one, restore it locally. The dump
// file is removed on every exit path.
//
// Concurrent pulls of the same alias are not coordinated; two at once
// would race on CREATE/DROP of the local database.
type Pipeline struct {
	Cfg      *config.Config
	CacheDir string
	Prepare  Preparer
	Start    procio.Starter
	Sink     ProgressSink
	Log      zerolog.Logger
}

// Pull runs the pipeline for alias within env. Environment and alias are
// validated before any connection or subprocess; a failure in any step
// short-circuits the rest, but dump-file cleanup always runs.
func (p *Pipeline) Pull(ctx context.Context, env, alias string) (err error) {
	envCfg, err := p.Cfg.Env(env)
	if err != nil {
		return err
	}
	remote, err := envCfg.Resolve(alias)
	if err != nil {
		return err
	}

	job, err := NewJob(env, alias, p.CacheDir)
	if err != nil {
		return clierr.New(clierr.KindDBUnknown, "prepare pull job", err)
	}
	if err := job.RemoveDump(); err != nil {
		return clierr.New(clierr.KindDBUnknown, "clean stale dump", err)
	}

	defer func() {
		if rmErr := job.RemoveDump(); rmErr != nil {
			p.Log.Warn().Err(rmErr).Str("path", job.DumpPath).Msg("dump cleanup failed")
			if err == nil {
				err = clierr.New(clierr.KindDBUnknown, "clean dump file", rmErr)
			}
		}
	}()

	p.Log.Debug().Str("db", job.LocalName).Str("dump", job.DumpPath).Msg("pull started")

	if err := p.Prepare.Prepare(ctx, job.LocalName); err != nil {
		return err
	}
	if err := p.dump(remote, job); err != nil {
		return err
	}
	if err := p.restore(job); err != nil {
		return err
	}

	p.Log.Debug().Str("db", job.LocalName).Msg("pull finished")
	return nil
}

// dump spawns pg_dump against the remote database, streaming progress.
// A line containing "error:" aborts the pipeline.
func (p *Pipeline) dump(remote config.DB, job Job) error {
	name, args := DumpCommand(remote, job.DumpPath)
	proc, err := p.Start.Start(name, args, []string{"PGPASSWORD=" + remote.Password})
	if err != nil {
		return clierr.New(clierr.KindDBUnknown, "spawn pg_dump", err)
	}

	streamErr := proc.Lines(func(line string) error {
		if strings.Contains(line, "error:") {
			return clierr.New(clierr.KindDBPg, "check pull connection params", nil)
		}
		p.Sink.Update(StageDownload, line)
		return nil
	})
	p.waitQuietly(proc, "pg_dump")

	if streamErr != nil {
		if clierr.KindOf(streamErr) != "" {
			return streamErr
		}
		return clierr.New(clierr.KindDBUnknown, "stream pg_dump output", streamErr)
	}
	return nil
}

// restore spawns pg_restore loading the dump into the local database.
func (p *Pipeline) restore(job Job) error {
	name, args := RestoreCommand(p.Cfg.PGLocal, job.LocalName, job.DumpPath)
	proc, err := p.Start.Start(name, args, nil)
	if err != nil {
		return clierr.New(clierr.KindDBUnknown, "spawn pg_restore", err)
	}

	streamErr := proc.Lines(func(line string) error {
		p.Sink.Update(StageRestore, line)
		return nil
	})
	p.waitQuietly(proc, "pg_restore")

	if streamErr != nil {
		return clierr.New(clierr.KindDBUnknown, "stream pg_restore output", streamErr)
	}
	return nil
}

// waitQuietly gives the subprocess a bounded window to exit after its
// stream closed. Timeouts and exit codes are recorded, not surfaced.
func (p *Pipeline) waitQuietly(proc procio.Process, tool string) {
	if err := proc.Wait(procWaitTimeout); err != nil {
		p.Log.Debug().Err(err).Str("tool", tool).Msg("subprocess wait")
	}
}
