// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/portalbilet/dotctl/internal/workload"
)

type fakeLister struct{ pods []corev1.Pod }

func (f *fakeLister) List(context.Context, string, int64) ([]corev1.Pod, error) {
	return f.pods, nil
}

func testPod(podName, container string, age time.Duration) corev1.Pod {
	return corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: podName},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{Name: container, Args: []string{"serve"}}},
		},
		Status: corev1.PodStatus{
			PodIP:  "172.16.0.2",
			HostIP: "10.0.0.1",
			ContainerStatuses: []corev1.ContainerStatus{{
				Name:  container,
				Ready: true,
				State: corev1.ContainerState{
					Running: &corev1.ContainerStateRunning{StartedAt: metav1.NewTime(time.Now().Add(-age))},
				},
			}},
		},
	}
}

func testShowModel() showModel {
	agg := &workload.Aggregator{Pods: &fakeLister{pods: []corev1.Pod{
		testPod("api-7d9f", "api", 2*time.Hour),
		testPod("web-1a2b", "web", 10*time.Minute),
	}}}
	return newShowModel(agg, "stage")
}

func TestShowModelLoadsAndQuits(t *testing.T) {
	tm := teatest.NewTestModel(t, testShowModel(), teatest.WithInitialTermSize(120, 40))

	time.Sleep(100 * time.Millisecond)

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	finalModel := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second))

	fm := finalModel.(showModel)
	if fm.err != nil {
		t.Fatalf("unexpected error after first poll: %v", fm.err)
	}
	if fm.loading {
		t.Error("expected the first poll to have completed")
	}
	if len(fm.apps) != 2 {
		t.Errorf("expected 2 apps, got %d", len(fm.apps))
	}
}

func TestShowModelViewListsApps(t *testing.T) {
	m := testShowModel()

	msg := m.loadApps()
	updated, _ := m.Update(msg)
	view := updated.(showModel).View()

	for _, want := range []string{"api", "web", "STAGE"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestRenderAppsTableRebuilding(t *testing.T) {
	apps := map[string]*workload.App{
		"api": {Alias: "api-7d9f", Deployed: "2h ago", Instances: 1, Rebuilding: true},
	}
	out := renderAppsTable("prod", apps)
	if !strings.Contains(out, "REBUILDING") {
		t.Errorf("expected REBUILDING flag in:\n%s", out)
	}
}

func TestAppAliasCell(t *testing.T) {
	tests := []struct {
		name  string
		alias string
		want  string
	}{
		{"api", "api-7d9f", "-7d9f"},
		{"api", "gateway-xyz", "(gateway-xyz)"},
	}
	for _, tt := range tests {
		got := appAliasCell(tt.name, tt.alias)
		if !strings.Contains(got, tt.want) {
			t.Errorf("appAliasCell(%q, %q) = %q, want it to contain %q", tt.name, tt.alias, got, tt.want)
		}
	}
}

func TestExecArgsCell(t *testing.T) {
	if got := execArgsCell(""); !strings.Contains(got, "-") {
		t.Errorf("empty args should render a dash, got %q", got)
	}
	long := strings.Repeat("a", 40)
	if got := execArgsCell(long); !strings.Contains(got, strings.Repeat("a", 30)+"...") {
		t.Errorf("long args should be truncated, got %q", got)
	}
}
