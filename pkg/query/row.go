package query

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/duration"
	"k8s.io/utils/clock"

	faroserrors "github.com/faroslabs/faros/pkg/errors"
	"github.com/faroslabs/faros/pkg/logging"
)

// AgeUnknown marks a record whose creation timestamp was absent.
const AgeUnknown Age = -1

// Age is the time elapsed since a resource was created. It serializes
// in the compact kubectl style ("5m", "2d1h") rather than raw
// nanoseconds.
type Age time.Duration

func (a Age) String() string {
	if a < 0 {
		return "<unknown>"
	}
	return duration.HumanDuration(time.Duration(a))
}

// MarshalJSON renders the age as its human-readable string.
func (a Age) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// MarshalYAML renders the age as its human-readable string.
func (a Age) MarshalYAML() (any, error) {
	return a.String(), nil
}

// UnmarshalJSON parses the compact age notation back into an Age.
func (a *Age) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := parseAge(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// UnmarshalYAML parses the compact age notation back into an Age.
func (a *Age) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := parseAge(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

var ageUnits = map[rune]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
	'y': 365 * 24 * time.Hour,
}

// parseAge reverses the compact notation. Formatting floors sub-unit
// detail, so a parsed age matches the displayed value, not necessarily
// the duration it was formatted from.
func parseAge(s string) (Age, error) {
	if s == "" || s == "<unknown>" {
		return AgeUnknown, nil
	}

	var total time.Duration
	num, digits := 0, false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			num = num*10 + int(r-'0')
			digits = true
			continue
		}
		unit, ok := ageUnits[r]
		if !ok || !digits {
			return 0, fmt.Errorf("invalid age %q", s)
		}
		total += time.Duration(num) * unit
		num, digits = 0, false
	}
	if digits {
		return 0, fmt.Errorf("invalid age %q: trailing number without a unit", s)
	}
	return Age(total), nil
}

// Row is the normalized, renderer-ready view of one fetched resource.
// Kind-specific fields stay empty for the other kind: pods fill
// NodeName and IP, nodes fill Roles, Version and IP.
type Row struct {
	Name        string            `json:"name" yaml:"name"`
	Namespace   string            `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	NodeName    string            `json:"nodeName,omitempty" yaml:"nodeName,omitempty"`
	Status      string            `json:"status,omitempty" yaml:"status,omitempty"`
	IP          string            `json:"ip,omitempty" yaml:"ip,omitempty"`
	Roles       string            `json:"roles,omitempty" yaml:"roles,omitempty"`
	Version     string            `json:"version,omitempty" yaml:"version,omitempty"`
	Age         Age               `json:"age" yaml:"age"`
	Labels      map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// RawRecord is a fetched API object before normalization. Exactly one
// of Pod and Node is set, matching the selector's kind.
type RawRecord struct {
	Pod  *corev1.Pod
	Node *corev1.Node
}

// Mapper normalizes raw records into rows. The clock is injectable so
// ages stay stable under test.
type Mapper struct {
	clock clock.PassiveClock
}

// NewMapper returns a Mapper using the wall clock.
func NewMapper() *Mapper {
	return &Mapper{clock: clock.RealClock{}}
}

// NewMapperWithClock returns a Mapper reading time from c.
func NewMapperWithClock(c clock.PassiveClock) *Mapper {
	return &Mapper{clock: c}
}

// Row normalizes a single record. A record without a name is malformed:
// the API contract guarantees one, so its absence means version skew or
// a broken intermediary, and the whole query fails rather than emit a
// partial table.
func (m *Mapper) Row(rec RawRecord) (Row, error) {
	switch {
	case rec.Pod != nil:
		return m.podRow(rec.Pod)
	case rec.Node != nil:
		return m.nodeRow(rec.Node)
	}
	return Row{}, faroserrors.New(faroserrors.ErrCodeMalformedResource, "record carries neither a pod nor a node")
}

// Rows normalizes records in order, failing on the first malformed one.
func (m *Mapper) Rows(recs []RawRecord) ([]Row, error) {
	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		row, err := m.Row(rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (m *Mapper) podRow(pod *corev1.Pod) (Row, error) {
	if pod.Name == "" {
		slog.Error("malformed pod record: name is absent", "namespace", pod.Namespace)
		return Row{}, faroserrors.WrapWithContext(faroserrors.ErrCodeMalformedResource,
			"pod record has no name", nil, map[string]any{"kind": "pod", "namespace": pod.Namespace})
	}

	logging.Trace("mapping pod record", "name", pod.Name, "namespace", pod.Namespace)

	return Row{
		Name:        pod.Name,
		Namespace:   pod.Namespace,
		NodeName:    pod.Spec.NodeName,
		Status:      podStatus(pod),
		IP:          pod.Status.PodIP,
		Age:         m.age(pod.CreationTimestamp.Time),
		Labels:      pod.Labels,
		Annotations: pod.Annotations,
	}, nil
}

func (m *Mapper) nodeRow(node *corev1.Node) (Row, error) {
	if node.Name == "" {
		slog.Error("malformed node record: name is absent")
		return Row{}, faroserrors.WrapWithContext(faroserrors.ErrCodeMalformedResource,
			"node record has no name", nil, map[string]any{"kind": "node"})
	}

	logging.Trace("mapping node record", "name", node.Name)

	return Row{
		Name:        node.Name,
		Status:      nodeStatus(node),
		IP:          nodeInternalIP(node),
		Roles:       nodeRoles(node),
		Version:     node.Status.NodeInfo.KubeletVersion,
		Age:         m.age(node.CreationTimestamp.Time),
		Labels:      node.Labels,
		Annotations: node.Annotations,
	}, nil
}

func (m *Mapper) age(created time.Time) Age {
	if created.IsZero() {
		return AgeUnknown
	}
	return Age(m.clock.Now().Sub(created))
}

// podStatus derives the display status the way kubectl does, reduced to
// the states a read-only lens meets in practice: the phase, overridden
// by a waiting container's reason, overridden by Terminating once the
// deletion timestamp is set.
func podStatus(pod *corev1.Pod) string {
	status := string(pod.Status.Phase)
	if pod.Status.Reason != "" {
		status = pod.Status.Reason
	}

	for i := range pod.Status.ContainerStatuses {
		waiting := pod.Status.ContainerStatuses[i].State.Waiting
		if waiting != nil && waiting.Reason != "" {
			status = waiting.Reason
		}
	}

	if pod.DeletionTimestamp != nil {
		if pod.Status.Reason == "NodeLost" {
			return "Unknown"
		}
		return "Terminating"
	}

	return status
}

const (
	labelNodeRolePrefix = "node-role.kubernetes.io/"
	labelNodeRole       = "kubernetes.io/role"
)

// nodeStatus reports Ready or NotReady from the NodeReady condition,
// with a SchedulingDisabled suffix for cordoned nodes.
func nodeStatus(node *corev1.Node) string {
	status := "Unknown"
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			if cond.Status == corev1.ConditionTrue {
				status = "Ready"
			} else {
				status = "NotReady"
			}
			break
		}
	}

	if node.Spec.Unschedulable {
		status += ",SchedulingDisabled"
	}
	return status
}

// nodeRoles joins the roles encoded in the node's well-known labels.
func nodeRoles(node *corev1.Node) string {
	seen := map[string]bool{}
	var roles []string
	for k, v := range node.Labels {
		switch {
		case strings.HasPrefix(k, labelNodeRolePrefix):
			if role := strings.TrimPrefix(k, labelNodeRolePrefix); role != "" && !seen[role] {
				seen[role] = true
				roles = append(roles, role)
			}
		case k == labelNodeRole && v != "" && !seen[v]:
			seen[v] = true
			roles = append(roles, v)
		}
	}
	sort.Strings(roles)
	return strings.Join(roles, ",")
}

func nodeInternalIP(node *corev1.Node) string {
	for _, addr := range node.Status.Addresses {
		if addr.Type == corev1.NodeInternalIP {
			return addr.Address
		}
	}
	return ""
}
