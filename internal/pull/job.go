// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

// Package pull implements the remote-to-local database pull pipeline:
// prepare the local database, dump the remote one, restore it locally,
// and always remove the dump file when the job ends.
package pull

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Job is the ephemeral state of one pull invocation. The local database
// is named "{env}_{alias}" and the dump file path derives from it under
// the cache directory. The dump file never outlives the job.
type Job struct {
	Env       string
	Alias     string
	LocalName string
	DumpPath  string
}

// NewJob computes the job for one pull and ensures the cache directory
// exists.
func NewJob(env, alias, cacheDir string) (Job, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return Job{}, fmt.Errorf("create cache dir: %w", err)
	}

	local := env + "_" + alias
	return Job{
		Env:       env,
		Alias:     alias,
		LocalName: local,
		DumpPath:  filepath.Join(cacheDir, local+".tar.gz"),
	}, nil
}

// RemoveDump deletes the dump file. A missing file is not an error; the
// removal is idempotent.
func (j Job) RemoveDump() error {
	if err := os.Remove(j.DumpPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove dump file: %w", err)
	}
	return nil
}
