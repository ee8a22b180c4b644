// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

// Package workload collapses per-pod, per-container observations into
// one record per container name. Aggregation is stateless: each poll
// rebuilds the mapping from scratch.
package workload

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
)

// pageLimit caps the pod listing at 150 entries. Pods beyond the first
// page are silently ignored; namespaces larger than this under-report.
const pageLimit = 150

// tzOffset pins "now" to UTC-8 so ages match the deployment dashboards.
var tzOffset = time.FixedZone("UTC-8", -8*60*60)

// App is the canonical record for one container name across all pods in
// a namespace. Representative fields (Alias, Deployed, RestartCount,
// ExecArgs) come from the most recently started ready instance; PodIPs
// and Instances accumulate.
type App struct {
	Alias        string
	Deployed     string
	SinceStart   time.Duration
	RestartCount int32
	PodIPs       []string
	HostIP       string
	Instances    int
	ExecArgs     string
	Rebuilding   bool
}

// PodLister lists pods in a namespace, bounded by limit.
type PodLister interface {
	List(ctx context.Context, namespace string, limit int64) ([]corev1.Pod, error)
}

// Aggregator builds app records from orchestrator state.
type Aggregator struct {
	Pods PodLister
}

// List returns one App per distinct container name seen among the first
// 150 pods of the namespace.
//
// An instance only merges into an existing record when it started more
// recently than the recorded one; the replica count and IP list grow on
// that branch alone. The rebuild set accumulates through the pass, so a
// record created before a sibling went unready keeps Rebuilding=false
// until a fresher ready instance re-stamps it. Both behaviors are
// intentional and relied upon by the dashboards.
func (a *Aggregator) List(ctx context.Context, namespace string) (map[string]*App, error) {
	pods, err := a.Pods.List(ctx, namespace, pageLimit)
	if err != nil {
		return nil, fmt.Errorf("list pods in %s: %w", namespace, err)
	}

	now := time.Now().In(tzOffset)
	apps := make(map[string]*App)
	rebuilds := make(map[string]bool)

	for i := range pods {
		pod := &pods[i]
		if len(pod.Status.ContainerStatuses) == 0 {
			continue
		}

		for _, cont := range pod.Status.ContainerStatuses {
			if cont.Name == "" {
				continue
			}

			running := cont.State.Running
			if !cont.Ready || running == nil || running.StartedAt.IsZero() {
				rebuilds[cont.Name] = true
				continue
			}

			diff := now.Sub(running.StartedAt.Time)

			rec, seen := apps[cont.Name]
			if !seen {
				apps[cont.Name] = &App{
					Alias:        pod.Name,
					Deployed:     formatAge(diff),
					SinceStart:   diff,
					RestartCount: cont.RestartCount,
					PodIPs:       []string{pod.Status.PodIP},
					HostIP:       pod.Status.HostIP,
					Instances:    1,
					ExecArgs:     execArgs(cont.Name, pod),
					Rebuilding:   rebuilds[cont.Name],
				}
				continue
			}

			if diff < rec.SinceStart {
				rec.Alias = pod.Name
				rec.Deployed = formatAge(diff)
				rec.SinceStart = diff
				rec.RestartCount = cont.RestartCount
				rec.PodIPs = append(rec.PodIPs, pod.Status.PodIP)
				rec.HostIP = pod.Status.HostIP
				rec.Instances++
				rec.ExecArgs = execArgs(cont.Name, pod)
				rec.Rebuilding = rebuilds[cont.Name]
			}
		}
	}

	return apps, nil
}

// Names returns the sorted container names of a listing, for not-found
// suggestions.
func Names(apps map[string]*App) []string {
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// execArgs joins the run args of the pod spec container matching name.
func execArgs(name string, pod *corev1.Pod) string {
	for _, spec := range pod.Spec.Containers {
		if spec.Name == name {
			return strings.Join(spec.Args, " ")
		}
	}
	return ""
}

// formatAge renders a start-time delta the way the dashboards expect.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours())/24)
	}
}
