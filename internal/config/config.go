// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

// Package config loads and validates the dotctl configuration file.
// The schema is validated once at load time; commands work with typed
// values and never touch raw YAML.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/portalbilet/dotctl/internal/clierr"
)

// EnvStage and EnvProd are the deployment tiers dotctl knows about.
const (
	EnvStage = "stage"
	EnvProd  = "prod"
)

// DB holds connection parameters for one Postgres database.
type DB struct {
	Host     string `yaml:"host"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Port     int    `yaml:"port"`
}

// Env describes one deployment tier: its kubeconfig path and the map of
// database aliases that may be pulled from it.
type Env struct {
	K8s  string        `yaml:"k8s"`
	Pull map[string]DB `yaml:"pull"`
}

// Config is the full persisted schema.
type Config struct {
	PGLocal DB  `yaml:"pg_local"`
	Stage   Env `yaml:"stage"`
	Prod    Env `yaml:"prod"`
}

// Load reads and validates the config file at path. Any missing or
// malformed field is fatal.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, clierr.New(clierr.KindConfigLoad, fmt.Sprintf("open %s", path), err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, clierr.New(clierr.KindConfigLoad, fmt.Sprintf("parse %s", path), err)
	}

	if err := cfg.validate(); err != nil {
		return nil, clierr.New(clierr.KindConfigLoad, fmt.Sprintf("validate %s", path), err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if err := c.PGLocal.validate(); err != nil {
		return fmt.Errorf("pg_local: %w", err)
	}
	for name, env := range map[string]Env{EnvStage: c.Stage, EnvProd: c.Prod} {
		if env.K8s == "" {
			return fmt.Errorf("%s: missing k8s context path", name)
		}
		for alias, db := range env.Pull {
			if err := db.validate(); err != nil {
				return fmt.Errorf("%s.pull.%s: %w", name, alias, err)
			}
		}
	}
	return nil
}

func (d DB) validate() error {
	switch {
	case d.Host == "":
		return fmt.Errorf("missing host")
	case d.Name == "":
		return fmt.Errorf("missing name")
	case d.User == "":
		return fmt.Errorf("missing user")
	case d.Password == "":
		return fmt.Errorf("missing password")
	case d.Port == 0:
		return fmt.Errorf("missing port")
	}
	return nil
}

// Env resolves a deployment tier by name.
func (c *Config) Env(name string) (*Env, error) {
	switch name {
	case EnvStage:
		return &c.Stage, nil
	case EnvProd:
		return &c.Prod, nil
	}
	return nil, clierr.NotFound(clierr.KindEnvInvalid, name, []string{EnvStage, EnvProd})
}

// Resolve looks up a pull alias within the environment. An alias outside
// the environment's pull map is an error listing the configured aliases.
func (e *Env) Resolve(alias string) (DB, error) {
	db, ok := e.Pull[alias]
	if !ok {
		return DB{}, clierr.NotFound(clierr.KindAliasNotFound, alias, e.Aliases())
	}
	return db, nil
}

// Aliases returns the environment's configured pull aliases, sorted.
func (e *Env) Aliases() []string {
	names := make([]string, 0, len(e.Pull))
	for alias := range e.Pull {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}
