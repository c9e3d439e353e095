package query

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	corev1 "k8s.io/api/core/v1"

	faroserrors "github.com/faroslabs/faros/pkg/errors"
)

// EnvFilter selects containers by name with a regular expression. A
// leading "!" on the pattern inverts the match.
type EnvFilter struct {
	regex  *regexp.Regexp
	invert bool
}

// ParseEnvFilter compiles a filter expression. An empty expression
// matches every container.
func ParseEnvFilter(expr string) (*EnvFilter, error) {
	pattern, invert := expr, false
	if stripped, ok := strings.CutPrefix(expr, "!"); ok {
		pattern, invert = stripped, true
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, faroserrors.Wrap(faroserrors.ErrCodeInvalidSelector, "invalid container filter", err)
	}
	return &EnvFilter{regex: re, invert: invert}, nil
}

// Matches reports whether the container name passes the filter.
func (f *EnvFilter) Matches(name string) bool {
	if f == nil {
		return true
	}
	matched := f.regex.MatchString(name)
	if f.invert {
		return !matched
	}
	return matched
}

// EnvRow is the environment of one container in one selected pod.
type EnvRow struct {
	Namespace string   `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Pod       string   `json:"pod" yaml:"pod"`
	Container string   `json:"container" yaml:"container"`
	Env       []string `json:"env,omitempty" yaml:"env,omitempty"`
}

// EnvVars lists container environments for the pods the selector
// matches, one row per container that passes the filter. Values drawn
// from secrets, config maps or the downward API are shown as references
// rather than resolved, so the lens never reads what a pod spec only
// points at.
func (f *Fetcher) EnvVars(ctx context.Context, sel Selector, filter *EnvFilter) ([]EnvRow, error) {
	if sel.Kind != KindPod {
		return nil, faroserrors.New(faroserrors.ErrCodeInvalidSelector, "environment listings are derived from pods")
	}

	recs, err := f.Fetch(ctx, sel)
	if err != nil {
		return nil, err
	}

	var rows []EnvRow
	appendContainer := func(pod *corev1.Pod, name string, env []corev1.EnvVar) {
		if !filter.Matches(name) {
			return
		}
		row := EnvRow{Namespace: pod.Namespace, Pod: pod.Name, Container: name}
		for _, e := range env {
			row.Env = append(row.Env, fmt.Sprintf("%s=%s", e.Name, envValue(e)))
		}
		rows = append(rows, row)
	}

	for _, rec := range recs {
		pod := rec.Pod
		for _, c := range pod.Spec.Containers {
			appendContainer(pod, c.Name, c.Env)
		}
		for _, c := range pod.Spec.InitContainers {
			appendContainer(pod, "init-"+c.Name, c.Env)
		}
	}

	return rows, nil
}

func envValue(env corev1.EnvVar) string {
	if env.ValueFrom == nil {
		return env.Value
	}
	switch {
	case env.ValueFrom.SecretKeyRef != nil:
		return fmt.Sprintf("<secret %s/%s>", env.ValueFrom.SecretKeyRef.Name, env.ValueFrom.SecretKeyRef.Key)
	case env.ValueFrom.ConfigMapKeyRef != nil:
		return fmt.Sprintf("<configmap %s/%s>", env.ValueFrom.ConfigMapKeyRef.Name, env.ValueFrom.ConfigMapKeyRef.Key)
	case env.ValueFrom.FieldRef != nil:
		return fmt.Sprintf("<field %s>", env.ValueFrom.FieldRef.FieldPath)
	case env.ValueFrom.ResourceFieldRef != nil:
		return fmt.Sprintf("<resource %s>", env.ValueFrom.ResourceFieldRef.Resource)
	}
	return "<dynamic>"
}
