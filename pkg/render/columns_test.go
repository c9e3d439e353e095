package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/faroslabs/faros/pkg/query"
)

func TestPolicy_FixedColumns(t *testing.T) {
	tests := []struct {
		name string
		sel  query.Selector
		want []string
	}{
		{
			name: "pods normal",
			sel:  query.Selector{Kind: query.KindPod, Namespace: "default", Mode: query.ModeNormal},
			want: []string{"NAME", "STATUS", "AGE"},
		},
		{
			name: "pods all namespaces lead with the namespace",
			sel:  query.Selector{Kind: query.KindPod, AllNamespaces: true, Mode: query.ModeNormal},
			want: []string{"NAMESPACE", "NAME", "STATUS", "AGE"},
		},
		{
			name: "pods wide",
			sel:  query.Selector{Kind: query.KindPod, Namespace: "default", Mode: query.ModeWide},
			want: []string{"NAME", "STATUS", "AGE", "NODE", "IP"},
		},
		{
			name: "pods wide across all namespaces",
			sel:  query.Selector{Kind: query.KindPod, AllNamespaces: true, Mode: query.ModeWide},
			want: []string{"NAMESPACE", "NAME", "STATUS", "AGE", "NODE", "IP"},
		},
		{
			name: "nodes normal",
			sel:  query.Selector{Kind: query.KindNode, Mode: query.ModeNormal},
			want: []string{"NAME", "STATUS", "AGE"},
		},
		{
			name: "nodes wide",
			sel:  query.Selector{Kind: query.KindNode, Mode: query.ModeWide},
			want: []string{"NAME", "STATUS", "AGE", "ROLES", "VERSION", "INTERNAL-IP"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := Policy{}.Columns(tt.sel, nil)
			assert.Equal(t, tt.want, cols.Headers())
		})
	}
}

func TestPolicy_LabelColumnsAreUnionedSortedAndUppercased(t *testing.T) {
	sel := query.Selector{Kind: query.KindPod, Namespace: "default", ShowLabels: true, Mode: query.ModeNormal}
	rows := []query.Row{
		{Name: "web-0", Labels: map[string]string{"tier": "frontend", "app": "web"}},
		{Name: "db-0", Labels: map[string]string{"app": "db", "team": "storage"}},
	}

	cols := Policy{}.Columns(sel, rows)
	assert.Equal(t, []string{"NAME", "STATUS", "AGE", "APP", "TEAM", "TIER"}, cols.Headers())
}

func TestPolicy_DynamicColumnsIgnoreRowOrder(t *testing.T) {
	sel := query.Selector{Kind: query.KindPod, Namespace: "default", ShowLabels: true, Mode: query.ModeNormal}
	forward := []query.Row{
		{Name: "a", Labels: map[string]string{"app": "x"}},
		{Name: "b", Labels: map[string]string{"tier": "y", "team": "z"}},
	}
	reversed := []query.Row{forward[1], forward[0]}

	assert.Equal(t,
		Policy{}.Columns(sel, forward).Headers(),
		Policy{}.Columns(sel, reversed).Headers(),
	)
}

func TestPolicy_AnnotationColumnsFollowTheSameRule(t *testing.T) {
	sel := query.Selector{Kind: query.KindNode, ShowAnnotations: true, Mode: query.ModeNormal}
	rows := []query.Row{
		{Name: "worker-1", Annotations: map[string]string{"owner": "infra"}},
		{Name: "worker-2", Annotations: map[string]string{"escalation": "page"}},
	}

	cols := Policy{}.Columns(sel, rows)
	assert.Equal(t, []string{"NAME", "STATUS", "AGE", "ESCALATION", "OWNER"}, cols.Headers())
}

func TestPolicy_BothFlagsCollapseIntoAggregateColumns(t *testing.T) {
	sel := query.Selector{
		Kind: query.KindPod, Namespace: "default",
		ShowLabels: true, ShowAnnotations: true, Mode: query.ModeNormal,
	}
	rows := []query.Row{
		{
			Name:        "web-0",
			Labels:      map[string]string{"tier": "frontend", "app": "web"},
			Annotations: map[string]string{"owner": "platform"},
		},
	}

	cols := Policy{}.Columns(sel, rows)
	assert.Equal(t, []string{"NAME", "STATUS", "AGE", "LABELS", "ANNOTATIONS"}, cols.Headers())

	labels := cols[3].Value(rows[0])
	assert.Equal(t, "app=web,tier=frontend", labels)

	annotations := cols[4].Value(rows[0])
	assert.Equal(t, "owner=platform", annotations)
}

func TestPolicy_AggregateColumnsRenderNoneWhenEmpty(t *testing.T) {
	sel := query.Selector{
		Kind: query.KindPod, Namespace: "default",
		ShowLabels: true, ShowAnnotations: true, Mode: query.ModeNormal,
	}
	rows := []query.Row{{Name: "bare-0"}}

	cols := Policy{}.Columns(sel, rows)
	assert.Equal(t, None, cols[3].Value(rows[0]))
	assert.Equal(t, None, cols[4].Value(rows[0]))
}

func TestPolicy_ExclusionRemovesKeysBeforeDerivation(t *testing.T) {
	sel := query.Selector{Kind: query.KindPod, Namespace: "default", ShowLabels: true, Mode: query.ModeNormal}
	rows := []query.Row{
		{Name: "web-0", Labels: map[string]string{
			"app":               "web",
			"pod-template-hash": "abc123",
			"kubectl.kubernetes.io/last-applied-configuration": "{}",
		}},
	}

	policy := Policy{Exclude: KeyExcluder{"kubectl.kubernetes.io/*", "pod-template-hash"}}
	cols := policy.Columns(sel, rows)
	assert.Equal(t, []string{"NAME", "STATUS", "AGE", "APP"}, cols.Headers())
}

func TestPolicy_ExclusionAppliesToAggregates(t *testing.T) {
	sel := query.Selector{
		Kind: query.KindPod, Namespace: "default",
		ShowLabels: true, ShowAnnotations: true, Mode: query.ModeNormal,
	}
	rows := []query.Row{
		{Name: "web-0", Labels: map[string]string{"app": "web", "pod-template-hash": "abc123"}},
	}

	policy := Policy{Exclude: KeyExcluder{"*-hash"}}
	cols := policy.Columns(sel, rows)
	assert.Equal(t, "app=web", cols[3].Value(rows[0]))
}

func TestPolicy_ZeroRowsStillDeriveFixedColumns(t *testing.T) {
	sel := query.Selector{Kind: query.KindPod, AllNamespaces: true, ShowLabels: true, Mode: query.ModeWide}

	cols := Policy{}.Columns(sel, nil)
	assert.Equal(t, []string{"NAMESPACE", "NAME", "STATUS", "AGE", "NODE", "IP"}, cols.Headers())
}

func TestPolicy_MissingKeyRendersNone(t *testing.T) {
	sel := query.Selector{Kind: query.KindPod, Namespace: "default", ShowLabels: true, Mode: query.ModeNormal}
	rows := []query.Row{
		{Name: "a", Labels: map[string]string{"app": "1"}},
		{Name: "b", Labels: map[string]string{"build": "2"}},
	}

	cols := Policy{}.Columns(sel, rows)
	assert.Equal(t, []string{"NAME", "STATUS", "AGE", "APP", "BUILD"}, cols.Headers())

	appCol, buildCol := cols[3], cols[4]
	assert.Equal(t, "1", appCol.Value(rows[0]))
	assert.Equal(t, None, appCol.Value(rows[1]))
	assert.Equal(t, None, buildCol.Value(rows[0]))
	assert.Equal(t, "2", buildCol.Value(rows[1]))
}

func TestPolicy_PresentButEmptyValueIsNotNone(t *testing.T) {
	sel := query.Selector{Kind: query.KindNode, ShowLabels: true, Mode: query.ModeNormal}
	rows := []query.Row{
		{Name: "cp-1", Labels: map[string]string{"node-role.kubernetes.io/control-plane": ""}},
	}

	cols := Policy{}.Columns(sel, rows)
	assert.Equal(t, "", cols[3].Value(rows[0]))
}
