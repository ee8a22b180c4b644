// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

// Package clierr provides error classification and user-facing error
// formatting for the CLI. Every fatal condition is tagged with a kind so
// the command boundary can frame one message and exit non-zero.
package clierr

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced at the command boundary.
const (
	KindConfigLoad     = "config_load"      // config file missing or schema invalid
	KindEnvInvalid     = "env_invalid"      // unknown environment name
	KindAliasNotFound  = "alias_not_found"  // alias absent from the environment's pull map
	KindDBPrepareLocal = "db_prepare_local" // local CREATE/DROP DATABASE failed
	KindDBPg           = "db_pg"            // recognized database failure during dump/restore
	KindDBUnknown      = "db_unknown"       // any other dump/restore failure
	KindK8sContextLoad = "k8s_context_load" // kubeconfig file missing or unreadable
	KindAppNotFound    = "app_not_found"    // app absent from the current workload listing
)

// Error is a kind-tagged CLI error. Alternatives, when set, lists the
// valid choices shown to the user for not-found conditions.
type Error struct {
	Kind         string
	Message      string
	Alternatives []string
	Err          error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with a kind and a short description.
func New(kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NotFound reports that name is not among the valid alternatives.
func NotFound(kind, name string, alternatives []string) *Error {
	return &Error{
		Kind:         kind,
		Message:      fmt.Sprintf("the %s is not found", name),
		Alternatives: alternatives,
	}
}

// KindOf returns the kind of err, or empty when err carries no kind.
func KindOf(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind string) bool {
	return KindOf(err) == kind
}

// labels maps kinds to the message prefix shown to the user.
var labels = map[string]string{
	KindConfigLoad:     "Config not loaded",
	KindEnvInvalid:     "Unknown environment",
	KindDBPrepareLocal: "Prepare local database",
	KindDBPg:           "Postgres error",
	KindDBUnknown:      "Unknown pulling error",
	KindK8sContextLoad: "K8S load config file",
}

// Pretty formats err as the single message printed before exiting.
// Not-found kinds list the valid alternatives.
func Pretty(err error) string {
	if err == nil {
		return ""
	}

	var ce *Error
	if !errors.As(err, &ce) {
		return fmt.Sprintf("ERROR %v", err)
	}

	if len(ce.Alternatives) > 0 {
		return fmt.Sprintf("NOT FOUND %s, try: [%s]", ce.Message, strings.Join(ce.Alternatives, " "))
	}
	if label, ok := labels[ce.Kind]; ok {
		return fmt.Sprintf("ERROR %s: %s", label, ce.Error())
	}
	return fmt.Sprintf("ERROR %s", ce.Error())
}
