package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/faroslabs/faros/pkg/k8s"
)

func TestFetcher_Images(t *testing.T) {
	ctx := context.Background()
	fakeClient := fake.NewClientset(
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Name: "pod-a", Namespace: "ns"},
			Spec: corev1.PodSpec{
				Containers: []corev1.Container{
					{Name: "c1", Image: "registry.example.com/team/app:v2"},
				},
				InitContainers: []corev1.Container{
					{Name: "init", Image: "busybox"},
				},
			},
		},
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Name: "pod-b", Namespace: "ns"},
			Spec: corev1.PodSpec{
				Containers: []corev1.Container{
					{Name: "c1", Image: "registry.example.com/team/app:v2"},
				},
			},
		},
	)
	fetcher := NewFetcher(k8s.NewReader(fakeClient))

	rows, err := fetcher.Images(ctx, Selector{Kind: KindPod, Namespace: "ns", Mode: ModeNormal})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Sorted by image name: busybox normalizes ahead of the registry path.
	assert.Equal(t, "busybox", rows[0].Image)
	assert.Equal(t, "latest", rows[0].Tag)
	assert.Equal(t, 1, rows[0].Count)
	assert.Equal(t, []string{"ns/pod-a:init-init"}, rows[0].Locations)

	assert.Equal(t, "registry.example.com/team/app", rows[1].Image)
	assert.Equal(t, "v2", rows[1].Tag)
	assert.Equal(t, 2, rows[1].Count)
	assert.Equal(t, []string{"ns/pod-a:c1", "ns/pod-b:c1"}, rows[1].Locations)
}

func TestFetcher_ImagesKeepsUnparsableRefs(t *testing.T) {
	ctx := context.Background()
	fakeClient := fake.NewClientset(
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Name: "pod-a", Namespace: "ns"},
			Spec: corev1.PodSpec{
				Containers: []corev1.Container{
					{Name: "c1", Image: "UPPERCASE/Not:Valid:Ref"},
				},
			},
		},
	)
	fetcher := NewFetcher(k8s.NewReader(fakeClient))

	rows, err := fetcher.Images(ctx, Selector{Kind: KindPod, Namespace: "ns", Mode: ModeNormal})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "UPPERCASE/Not:Valid:Ref", rows[0].Image)
	assert.Empty(t, rows[0].Tag)
}

func TestFetcher_ImagesRequirePodSelector(t *testing.T) {
	fetcher := NewFetcher(k8s.NewReader(fake.NewClientset()))

	_, err := fetcher.Images(context.Background(), Selector{Kind: KindNode, Mode: ModeNormal})
	assert.Error(t, err)
}

func TestSplitImageRef(t *testing.T) {
	tests := []struct {
		ref      string
		wantName string
		wantTag  string
	}{
		{"nginx", "nginx", "latest"},
		{"nginx:1.27", "nginx", "1.27"},
		{"registry.example.com/a/b:v1", "registry.example.com/a/b", "v1"},
		{
			"nginx@sha256:aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			"nginx",
			"sha256:aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			name, tag := splitImageRef(tt.ref)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantTag, tag)
		})
	}
}
