package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	clienttesting "k8s.io/client-go/testing"

	faroserrors "github.com/faroslabs/faros/pkg/errors"
	"github.com/faroslabs/faros/pkg/k8s"
)

func podInNamespace(name, namespace, node string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec:       corev1.PodSpec{NodeName: node},
		Status:     corev1.PodStatus{Phase: corev1.PodRunning},
	}
}

func TestFetcher_PlainSelectorIssuesExactlyOneScopedList(t *testing.T) {
	ctx := context.Background()
	fakeClient := fake.NewClientset(
		podInNamespace("pod-a", "team-a", "worker-1"),
		podInNamespace("pod-b", "team-b", "worker-1"),
	)
	fetcher := NewFetcher(k8s.NewReader(fakeClient))

	recs, err := fetcher.Fetch(ctx, Selector{Kind: KindPod, Namespace: "team-a", Mode: ModeNormal})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "pod-a", recs[0].Pod.Name)

	actions := fakeClient.Actions()
	require.Len(t, actions, 1)
	assert.Equal(t, "list", actions[0].GetVerb())
	assert.Equal(t, "pods", actions[0].GetResource().Resource)
	assert.Equal(t, "team-a", actions[0].GetNamespace())
}

func TestFetcher_AllNamespacesListsClusterWide(t *testing.T) {
	ctx := context.Background()
	fakeClient := fake.NewClientset(
		podInNamespace("pod-a", "team-a", ""),
		podInNamespace("pod-b", "team-b", ""),
	)
	fetcher := NewFetcher(k8s.NewReader(fakeClient))

	recs, err := fetcher.Fetch(ctx, Selector{Kind: KindPod, AllNamespaces: true, Mode: ModeNormal})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	actions := fakeClient.Actions()
	require.Len(t, actions, 1)
	assert.Equal(t, "list", actions[0].GetVerb())
	assert.Equal(t, metav1.NamespaceAll, actions[0].GetNamespace())
}

func TestFetcher_NodeFilterIsClientSide(t *testing.T) {
	ctx := context.Background()
	fakeClient := fake.NewClientset(
		podInNamespace("pod-a", "team-a", "worker-1"),
		podInNamespace("pod-b", "team-a", "worker-2"),
		podInNamespace("pod-c", "team-a", "worker-1"),
	)
	fetcher := NewFetcher(k8s.NewReader(fakeClient))

	recs, err := fetcher.Fetch(ctx, Selector{Kind: KindPod, Namespace: "team-a", Node: "worker-1", Mode: ModeNormal})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "pod-a", recs[0].Pod.Name)
	assert.Equal(t, "pod-c", recs[1].Pod.Name)

	// Still a single list call; filtering never goes back to the API.
	assert.Len(t, fakeClient.Actions(), 1)
}

func TestFetcher_NamedPodUsesGet(t *testing.T) {
	ctx := context.Background()
	fakeClient := fake.NewClientset(podInNamespace("my-pod", "default", "worker-1"))
	fetcher := NewFetcher(k8s.NewReader(fakeClient))

	recs, err := fetcher.Fetch(ctx, Selector{Kind: KindPod, Namespace: "default", Name: "my-pod", Mode: ModeNormal})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "my-pod", recs[0].Pod.Name)

	actions := fakeClient.Actions()
	require.Len(t, actions, 1)
	assert.Equal(t, "get", actions[0].GetVerb())
	assert.Equal(t, "default", actions[0].GetNamespace())
}

func TestFetcher_NamedGhostPodReportsNotFound(t *testing.T) {
	ctx := context.Background()
	fetcher := NewFetcher(k8s.NewReader(fake.NewClientset()))

	recs, err := fetcher.Fetch(ctx, Selector{Kind: KindPod, Namespace: "default", Name: "ghost", Mode: ModeNormal})
	require.Error(t, err)
	assert.Nil(t, recs)
	assert.True(t, faroserrors.IsCode(err, faroserrors.ErrCodeNotFound))
	assert.Contains(t, err.Error(), "ghost")
}

func TestFetcher_EmptyResultIsNotAnError(t *testing.T) {
	ctx := context.Background()
	fetcher := NewFetcher(k8s.NewReader(fake.NewClientset()))

	rows, err := fetcher.Rows(ctx, Selector{Kind: KindPod, AllNamespaces: true, Mode: ModeNormal})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFetcher_APIFailureWrapsCauseVerbatim(t *testing.T) {
	ctx := context.Background()
	fakeClient := fake.NewClientset()
	fakeClient.PrependReactor("list", "pods", func(action clienttesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("connection refused")
	})
	fetcher := NewFetcher(k8s.NewReader(fakeClient))

	_, err := fetcher.Fetch(ctx, Selector{Kind: KindPod, Namespace: "default", Mode: ModeNormal})
	require.Error(t, err)
	assert.True(t, faroserrors.IsCode(err, faroserrors.ErrCodeAPIUnavailable))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestFetcher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	fetcher := NewFetcher(k8s.NewReader(fake.NewClientset()))
	recs, err := fetcher.Fetch(ctx, Selector{Kind: KindPod, Namespace: "default", Mode: ModeNormal})

	assert.Error(t, err)
	assert.Nil(t, recs)
	assert.Equal(t, context.Canceled, err)
}

func TestFetcher_InvalidSelectorNeverReachesTheAPI(t *testing.T) {
	ctx := context.Background()
	fakeClient := fake.NewClientset()
	fetcher := NewFetcher(k8s.NewReader(fakeClient))

	_, err := fetcher.Fetch(ctx, Selector{Kind: KindPod, Name: "web-0", AllNamespaces: true, Mode: ModeNormal})
	require.Error(t, err)
	assert.True(t, faroserrors.IsCode(err, faroserrors.ErrCodeInvalidSelector))
	assert.Empty(t, fakeClient.Actions())
}

func TestFetcher_NodesListAndGet(t *testing.T) {
	ctx := context.Background()
	fakeClient := fake.NewClientset(
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "worker-1"}},
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "worker-2"}},
	)
	fetcher := NewFetcher(k8s.NewReader(fakeClient))

	recs, err := fetcher.Fetch(ctx, Selector{Kind: KindNode, Mode: ModeNormal})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = fetcher.Fetch(ctx, Selector{Kind: KindNode, Name: "worker-2", Mode: ModeNormal})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "worker-2", recs[0].Node.Name)

	_, err = fetcher.Fetch(ctx, Selector{Kind: KindNode, Name: "ghost", Mode: ModeNormal})
	require.Error(t, err)
	assert.True(t, faroserrors.IsCode(err, faroserrors.ErrCodeNotFound))
}

func TestFetcher_NodeQueriesIgnoreTheNodeFilter(t *testing.T) {
	ctx := context.Background()
	fakeClient := fake.NewClientset(
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "worker-1"}},
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "worker-2"}},
	)
	fetcher := NewFetcher(k8s.NewReader(fakeClient))

	recs, err := fetcher.Fetch(ctx, Selector{Kind: KindNode, Node: "worker-1", Mode: ModeNormal})
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}
