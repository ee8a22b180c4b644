// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

package pull

import (
	"strconv"

	"github.com/portalbilet/dotctl/internal/config"
)

// DumpCommand builds the pg_dump invocation for the remote database.
// The password travels only through the PGPASSWORD environment variable;
// user and host ride argv the way pg_dump expects them.
func DumpCommand(remote config.DB, dumpPath string) (string, []string) {
	return "pg_dump", []string{
		"-v",
		"-U", remote.User,
		"-h", remote.Host,
		"-p", strconv.Itoa(remote.Port),
		"--dbname", remote.Name,
		"-Fc",
		"-f", dumpPath,
	}
}

// RestoreCommand builds the pg_restore invocation loading the dump into
// the freshly prepared local database.
func RestoreCommand(local config.DB, localName, dumpPath string) (string, []string) {
	return "pg_restore", []string{
		"-v",
		"-U", local.User,
		"-h", local.Host,
		"--clean",
		"--no-acl",
		"--no-owner",
		"--dbname", localName,
		dumpPath,
	}
}
