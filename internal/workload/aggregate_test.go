// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

package workload

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

type fakeLister struct {
	pods      []corev1.Pod
	gotLimit  int64
	gotNS     string
	listCalls int
	err       error
}

func (f *fakeLister) List(_ context.Context, namespace string, limit int64) ([]corev1.Pod, error) {
	f.listCalls++
	f.gotNS = namespace
	f.gotLimit = limit
	return f.pods, f.err
}

// readyPod builds a pod with one ready container that started age ago.
func readyPod(podName, container, podIP string, age time.Duration, restarts int32, args ...string) corev1.Pod {
	started := time.Now().Add(-age)
	return corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: podName},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{Name: container, Args: args}},
		},
		Status: corev1.PodStatus{
			PodIP:  podIP,
			HostIP: "10.0.0.1",
			ContainerStatuses: []corev1.ContainerStatus{{
				Name:         container,
				Ready:        true,
				RestartCount: restarts,
				State: corev1.ContainerState{
					Running: &corev1.ContainerStateRunning{StartedAt: metav1.NewTime(started)},
				},
			}},
		},
	}
}

// unreadyPod builds a pod whose container has no running start time.
func unreadyPod(podName, container string) corev1.Pod {
	return corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: podName},
		Status: corev1.PodStatus{
			PodIP: "172.16.0.9",
			ContainerStatuses: []corev1.ContainerStatus{{
				Name:  container,
				Ready: false,
			}},
		},
	}
}

func TestListUsesPageLimit(t *testing.T) {
	lister := &fakeLister{}
	agg := &Aggregator{Pods: lister}

	_, err := agg.List(context.Background(), "stage")
	require.NoError(t, err)
	assert.Equal(t, int64(150), lister.gotLimit)
	assert.Equal(t, "stage", lister.gotNS)
}

func TestListFreshestInstanceWins(t *testing.T) {
	older := readyPod("api-7d9-old", "api", "172.16.0.2", 3*time.Hour, 4)
	newer := readyPod("api-7d9-new", "api", "172.16.0.3", 10*time.Minute, 0)

	orders := map[string][]corev1.Pod{
		"older first": {older, newer},
		"newer first": {newer, older},
	}

	for name, pods := range orders {
		t.Run(name, func(t *testing.T) {
			agg := &Aggregator{Pods: &fakeLister{pods: pods}}
			apps, err := agg.List(context.Background(), "stage")
			require.NoError(t, err)
			require.Contains(t, apps, "api")

			rec := apps["api"]
			assert.Equal(t, "api-7d9-new", rec.Alias, "freshest instance supplies canonical fields")
			assert.Equal(t, int32(0), rec.RestartCount)

			if name == "older first" {
				// Strict improvement merges the newer instance in.
				assert.Equal(t, []string{"172.16.0.2", "172.16.0.3"}, rec.PodIPs)
				assert.Equal(t, 2, rec.Instances)
			} else {
				// Newer first: the older instance never improves on the
				// minimum and is not merged. Accumulation only happens on
				// the strict-improvement branch.
				assert.Equal(t, []string{"172.16.0.3"}, rec.PodIPs)
				assert.Equal(t, 1, rec.Instances)
			}
		})
	}
}

func TestListReplicaCountNeverBelowOne(t *testing.T) {
	pods := []corev1.Pod{
		readyPod("web-a", "web", "172.16.1.1", time.Hour, 0),
		readyPod("web-b", "web", "172.16.1.2", 2*time.Hour, 0),
		readyPod("worker-a", "worker", "172.16.1.3", time.Minute, 0),
	}
	agg := &Aggregator{Pods: &fakeLister{pods: pods}}

	apps, err := agg.List(context.Background(), "prod")
	require.NoError(t, err)
	for name, rec := range apps {
		assert.GreaterOrEqual(t, rec.Instances, 1, "app %s", name)
	}
}

func TestListRebuildFlagDependsOnVisitOrder(t *testing.T) {
	ready := readyPod("api-ready", "api", "172.16.2.1", time.Hour, 0)
	fresher := readyPod("api-fresh", "api", "172.16.2.2", time.Minute, 0)
	broken := unreadyPod("api-broken", "api")

	t.Run("unready seen first marks record at creation", func(t *testing.T) {
		agg := &Aggregator{Pods: &fakeLister{pods: []corev1.Pod{broken, ready}}}
		apps, err := agg.List(context.Background(), "stage")
		require.NoError(t, err)
		require.Contains(t, apps, "api")
		assert.True(t, apps["api"].Rebuilding)
		assert.Equal(t, 1, apps["api"].Instances, "unready instance contributes no replica")
	})

	t.Run("unready seen after creation only applies on next improvement", func(t *testing.T) {
		agg := &Aggregator{Pods: &fakeLister{pods: []corev1.Pod{ready, broken, fresher}}}
		apps, err := agg.List(context.Background(), "stage")
		require.NoError(t, err)
		require.Contains(t, apps, "api")
		// The fresher instance re-stamps the record after the rebuild
		// set picked up the broken sibling.
		assert.True(t, apps["api"].Rebuilding)
		assert.Equal(t, "api-fresh", apps["api"].Alias)
	})

	t.Run("unready last leaves existing record untouched", func(t *testing.T) {
		agg := &Aggregator{Pods: &fakeLister{pods: []corev1.Pod{ready, broken}}}
		apps, err := agg.List(context.Background(), "stage")
		require.NoError(t, err)
		require.Contains(t, apps, "api")
		assert.False(t, apps["api"].Rebuilding, "rebuild set is not applied retroactively")
	})
}

func TestListSkipsNamelessAndStatuslessContainers(t *testing.T) {
	nameless := readyPod("ghost", "", "172.16.3.1", time.Hour, 0)
	empty := corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "empty"}}
	agg := &Aggregator{Pods: &fakeLister{pods: []corev1.Pod{nameless, empty}}}

	apps, err := agg.List(context.Background(), "stage")
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestListExecArgsFromSpecContainer(t *testing.T) {
	pod := readyPod("api-1", "api", "172.16.4.1", time.Hour, 0, "serve", "--port", "8080")
	agg := &Aggregator{Pods: &fakeLister{pods: []corev1.Pod{pod}}}

	apps, err := agg.List(context.Background(), "stage")
	require.NoError(t, err)
	require.Contains(t, apps, "api")
	assert.Equal(t, "serve --port 8080", apps["api"].ExecArgs)
}

func TestNamesSorted(t *testing.T) {
	apps := map[string]*App{"web": {}, "api": {}, "worker": {}}
	assert.Equal(t, []string{"api", "web", "worker"}, Names(apps))
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{49 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAge(tt.d))
	}
}
