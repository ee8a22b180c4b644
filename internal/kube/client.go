// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

// Package kube builds Kubernetes clients from the per-environment
// kubeconfig files named in the dotctl config.
package kube

import (
	"context"
	"fmt"
	"os"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/portalbilet/dotctl/internal/clierr"
)

// NewClientset constructs a typed clientset from the kubeconfig at path.
// A missing or unreadable context file is a fatal k8s_context_load error.
func NewClientset(path string) (*kubernetes.Clientset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, clierr.New(clierr.KindK8sContextLoad, fmt.Sprintf("k8s context file %s", path), err)
	}

	cfg, err := clientcmd.BuildConfigFromFlags("", path)
	if err != nil {
		return nil, clierr.New(clierr.KindK8sContextLoad, fmt.Sprintf("load k8s context %s", path), err)
	}

	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, clierr.New(clierr.KindK8sContextLoad, "create k8s client", err)
	}
	return clientset, nil
}

// PodLister adapts the clientset to the aggregator's listing seam.
type PodLister struct {
	Client kubernetes.Interface
}

// List returns up to limit pods from the namespace. Only the first page
// is fetched.
func (l PodLister) List(ctx context.Context, namespace string, limit int64) ([]corev1.Pod, error) {
	pods, err := l.Client.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{Limit: limit})
	if err != nil {
		return nil, err
	}
	return pods.Items, nil
}
