package k8s

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Reader is the complete API surface the lens depends on. Everything
// downstream of it works the same against a real clientset or a fake
// one seeded in tests.
type Reader interface {
	// ListPods lists pods in the given namespace; an empty namespace
	// lists across the whole cluster.
	ListPods(ctx context.Context, namespace string) ([]corev1.Pod, error)

	// GetPod fetches a single pod by namespace and name.
	GetPod(ctx context.Context, namespace, name string) (*corev1.Pod, error)

	// ListNodes lists all nodes. Nodes are cluster-scoped.
	ListNodes(ctx context.Context) ([]corev1.Node, error)

	// GetNode fetches a single node by name.
	GetNode(ctx context.Context, name string) (*corev1.Node, error)
}

type clientReader struct {
	clientset kubernetes.Interface
}

// NewReader wraps a clientset in the Reader contract. Errors pass
// through unclassified; callers decide what a not-found or a transport
// failure means for them.
func NewReader(clientset kubernetes.Interface) Reader {
	return &clientReader{clientset: clientset}
}

func (r *clientReader) ListPods(ctx context.Context, namespace string) ([]corev1.Pod, error) {
	list, err := r.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (r *clientReader) GetPod(ctx context.Context, namespace, name string) (*corev1.Pod, error) {
	return r.clientset.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
}

func (r *clientReader) ListNodes(ctx context.Context) ([]corev1.Node, error) {
	list, err := r.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (r *clientReader) GetNode(ctx context.Context, name string) (*corev1.Node, error) {
	return r.clientset.CoreV1().Nodes().Get(ctx, name, metav1.GetOptions{})
}
