package query

import (
	"testing"

	faroserrors "github.com/faroslabs/faros/pkg/errors"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		arg     string
		want    Kind
		wantErr bool
	}{
		{"pods", KindPod, false},
		{"pod", KindPod, false},
		{"po", KindPod, false},
		{"PODS", KindPod, false},
		{" nodes ", KindNode, false},
		{"node", KindNode, false},
		{"no", KindNode, false},
		{"deployments", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := ParseKind(tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseKind(%q) expected error, got %q", tt.arg, got)
				}
				if !faroserrors.IsCode(err, faroserrors.ErrCodeInvalidSelector) {
					t.Fatalf("ParseKind(%q) error code = %q, want %q", tt.arg, faroserrors.CodeOf(err), faroserrors.ErrCodeInvalidSelector)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind(%q) unexpected error: %v", tt.arg, err)
			}
			if got != tt.want {
				t.Fatalf("ParseKind(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}
}

func TestParseOutputMode(t *testing.T) {
	tests := []struct {
		arg     string
		want    OutputMode
		wantErr bool
	}{
		{"", ModeNormal, false},
		{"normal", ModeNormal, false},
		{"wide", ModeWide, false},
		{"WIDE", ModeWide, false},
		{"json", "", true},
		{"tall", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := ParseOutputMode(tt.arg)
			if tt.wantErr != (err != nil) {
				t.Fatalf("ParseOutputMode(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Fatalf("ParseOutputMode(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}
}

func TestSelectorValidate(t *testing.T) {
	tests := []struct {
		name    string
		sel     Selector
		wantErr bool
	}{
		{
			name: "plain namespaced pods",
			sel:  Selector{Kind: KindPod, Namespace: "default", Mode: ModeNormal},
		},
		{
			name: "all namespaces",
			sel:  Selector{Kind: KindPod, AllNamespaces: true, Mode: ModeNormal},
		},
		{
			name: "named pod in namespace",
			sel:  Selector{Kind: KindPod, Namespace: "default", Name: "web-0", Mode: ModeWide},
		},
		{
			name: "node filter with namespace",
			sel:  Selector{Kind: KindPod, Namespace: "default", Node: "worker-1", Mode: ModeNormal},
		},
		{
			name: "nodes ignore the node filter",
			sel:  Selector{Kind: KindNode, Node: "worker-1", Mode: ModeNormal},
		},
		{
			name:    "name conflicts with all namespaces",
			sel:     Selector{Kind: KindPod, Name: "web-0", AllNamespaces: true, Mode: ModeNormal},
			wantErr: true,
		},
		{
			name:    "namespace conflicts with all namespaces",
			sel:     Selector{Kind: KindPod, Namespace: "default", AllNamespaces: true, Mode: ModeNormal},
			wantErr: true,
		},
		{
			name:    "node filter conflicts with all namespaces",
			sel:     Selector{Kind: KindPod, Node: "worker-1", AllNamespaces: true, Mode: ModeNormal},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			sel:     Selector{Kind: Kind("deployment"), Mode: ModeNormal},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			sel:     Selector{Kind: KindPod, Mode: OutputMode("tall")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sel.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !faroserrors.IsCode(err, faroserrors.ErrCodeInvalidSelector) {
					t.Fatalf("error code = %q, want %q", faroserrors.CodeOf(err), faroserrors.ErrCodeInvalidSelector)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestKnownKindNamesIsSorted(t *testing.T) {
	names := KnownKindNames()
	if len(names) == 0 {
		t.Fatal("expected at least one kind name")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %q before %q", names[i-1], names[i])
		}
	}
}
