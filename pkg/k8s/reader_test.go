package k8s

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestReader_ListPodsScopedToNamespace(t *testing.T) {
	ctx := context.Background()
	fakeClient := fake.NewClientset(
		&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "pod-a", Namespace: "ns"}},
		&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "pod-b", Namespace: "other"}},
	)
	reader := NewReader(fakeClient)

	pods, err := reader.ListPods(ctx, "ns")
	assert.NoError(t, err)
	if assert.Len(t, pods, 1) {
		assert.Equal(t, "pod-a", pods[0].Name)
	}
}

func TestReader_ListPodsAcrossCluster(t *testing.T) {
	ctx := context.Background()
	fakeClient := fake.NewClientset(
		&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "pod-a", Namespace: "ns"}},
		&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: "pod-b", Namespace: "other"}},
	)
	reader := NewReader(fakeClient)

	pods, err := reader.ListPods(ctx, metav1.NamespaceAll)
	assert.NoError(t, err)
	assert.Len(t, pods, 2)
}

func TestReader_GetPodNotFoundPassesThrough(t *testing.T) {
	ctx := context.Background()
	reader := NewReader(fake.NewClientset())

	_, err := reader.GetPod(ctx, "ns", "ghost")
	assert.Error(t, err)
	assert.True(t, apierrors.IsNotFound(err))
}

func TestReader_ListNodes(t *testing.T) {
	ctx := context.Background()
	fakeClient := fake.NewClientset(
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "node-1"}},
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "node-2"}},
	)
	reader := NewReader(fakeClient)

	nodes, err := reader.ListNodes(ctx)
	assert.NoError(t, err)
	assert.Len(t, nodes, 2)
}

func TestReader_GetNode(t *testing.T) {
	ctx := context.Background()
	fakeClient := fake.NewClientset(
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "node-1"}},
	)
	reader := NewReader(fakeClient)

	node, err := reader.GetNode(ctx, "node-1")
	assert.NoError(t, err)
	if assert.NotNil(t, node) {
		assert.Equal(t, "node-1", node.Name)
	}
}

func TestDefaultNamespace_FallsBackToDefault(t *testing.T) {
	// Point the loader at a kubeconfig that does not exist so neither an
	// explicit path nor the ambient environment can interfere.
	t.Setenv("KUBECONFIG", "")
	ns := DefaultNamespace(t.TempDir() + "/missing-kubeconfig")
	assert.Equal(t, metav1.NamespaceDefault, ns)
}
