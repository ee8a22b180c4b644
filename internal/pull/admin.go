// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

package pull

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/portalbilet/dotctl/internal/clierr"
	"github.com/portalbilet/dotctl/internal/config"
)

// pgDuplicateDatabase is the Postgres error code for duplicate_database.
const pgDuplicateDatabase = "42P04"

// Preparer makes a local database name ready to restore into.
type Preparer interface {
	Prepare(ctx context.Context, name string) error
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// LocalAdmin prepares the local Postgres instance for a restore. It is
// opened for a single pull and closed when the pull ends.
type LocalAdmin struct {
	exec execer
	db   *sql.DB
}

// NewLocalAdmin opens a connection pool against the local maintenance
// database.
func NewLocalAdmin(local config.DB) (*LocalAdmin, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		local.Host, local.Port, local.User, local.Password, local.Name,
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, clierr.New(clierr.KindDBPrepareLocal, "open local connection", err)
	}
	return &LocalAdmin{exec: db, db: db}, nil
}

// Close releases the local connection pool.
func (a *LocalAdmin) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Prepare creates the database. When it already exists the old one is
// dropped with FORCE and recreated: a destructive, non-confirmed
// overwrite of whatever was pulled before. Exactly one DROP+CREATE is
// attempted; a failing DROP surfaces immediately, never retries.
func (a *LocalAdmin) Prepare(ctx context.Context, name string) error {
	ident := pq.QuoteIdentifier(name)

	_, err := a.exec.ExecContext(ctx, "CREATE DATABASE "+ident)
	if err == nil {
		return nil
	}
	if !isDuplicateDatabase(err) {
		return clierr.New(clierr.KindDBPrepareLocal, fmt.Sprintf("create database %s", name), err)
	}

	if _, err := a.exec.ExecContext(ctx, "DROP DATABASE "+ident+" WITH (FORCE)"); err != nil {
		return clierr.New(clierr.KindDBPrepareLocal, fmt.Sprintf("drop database %s", name), err)
	}
	if _, err := a.exec.ExecContext(ctx, "CREATE DATABASE "+ident); err != nil {
		return clierr.New(clierr.KindDBPrepareLocal, fmt.Sprintf("recreate database %s", name), err)
	}
	return nil
}

func isDuplicateDatabase(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgDuplicateDatabase
}
