// Package query is the heart of the lens: it validates selectors,
// fetches the matching resources with the minimum number of API calls,
// and normalizes them into rows for rendering.
package query

import (
	"sort"
	"strings"

	faroserrors "github.com/faroslabs/faros/pkg/errors"
)

// Kind identifies a queryable resource type.
type Kind string

const (
	KindPod  Kind = "pod"
	KindNode Kind = "node"
)

var kindAliases = map[string]Kind{
	"pod":   KindPod,
	"pods":  KindPod,
	"po":    KindPod,
	"node":  KindNode,
	"nodes": KindNode,
	"no":    KindNode,
}

// ParseKind resolves a resource argument (kubectl-style spellings like
// "pods" or "po") to a Kind.
func ParseKind(arg string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(arg))]; ok {
		return k, nil
	}
	return "", faroserrors.Newf(faroserrors.ErrCodeInvalidSelector, "unknown resource kind %q", arg)
}

// KnownKindNames returns every accepted kind spelling, sorted, for help
// text and suggestions.
func KnownKindNames() []string {
	names := make([]string, 0, len(kindAliases))
	for name := range kindAliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OutputMode selects the fixed column set.
type OutputMode string

const (
	ModeNormal OutputMode = "normal"
	ModeWide   OutputMode = "wide"
)

// ParseOutputMode resolves an -o argument to an OutputMode. Empty input
// means normal.
func ParseOutputMode(arg string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "", string(ModeNormal):
		return ModeNormal, nil
	case string(ModeWide):
		return ModeWide, nil
	}
	return "", faroserrors.Newf(faroserrors.ErrCodeInvalidSelector, "unknown output mode %q, expected normal or wide", arg)
}

// Selector describes a single lens query. The zero value of each field
// means "not set"; defaulting happens at the command boundary after
// validation so conflicts are judged on what the user actually asked
// for.
type Selector struct {
	Kind            Kind
	Namespace       string
	AllNamespaces   bool
	Name            string
	Node            string
	ShowLabels      bool
	ShowAnnotations bool
	Mode            OutputMode
}

// Validate rejects selector combinations that do not resolve to exactly
// one API call. The node filter is silently ignored for node queries
// rather than rejected; filtering nodes by node is meaningless but not
// worth failing an otherwise good query over.
func (s Selector) Validate() error {
	switch s.Kind {
	case KindPod, KindNode:
	default:
		return faroserrors.Newf(faroserrors.ErrCodeInvalidSelector, "unknown resource kind %q", string(s.Kind))
	}

	switch s.Mode {
	case ModeNormal, ModeWide:
	default:
		return faroserrors.Newf(faroserrors.ErrCodeInvalidSelector, "unknown output mode %q", string(s.Mode))
	}

	if s.Name != "" && s.AllNamespaces {
		return faroserrors.New(faroserrors.ErrCodeInvalidSelector,
			"a resource name resolves to exactly one namespace and cannot be combined with --all-namespaces")
	}
	if s.Namespace != "" && s.AllNamespaces {
		return faroserrors.New(faroserrors.ErrCodeInvalidSelector,
			"--namespace cannot be combined with --all-namespaces")
	}
	if s.Node != "" && s.AllNamespaces {
		return faroserrors.New(faroserrors.ErrCodeInvalidSelector,
			"--node cannot be combined with --all-namespaces")
	}

	return nil
}
