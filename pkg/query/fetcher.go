package query

import (
	"context"
	"log/slog"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/clock"

	faroserrors "github.com/faroslabs/faros/pkg/errors"
	"github.com/faroslabs/faros/pkg/k8s"
)

// Fetcher answers selectors against a cluster with the minimum number
// of API calls: a named lookup is one get, everything else is one list.
// The node filter runs client-side over the returned list, never as a
// second call.
type Fetcher struct {
	reader k8s.Reader
	mapper *Mapper
}

// NewFetcher returns a Fetcher reading through r.
func NewFetcher(r k8s.Reader) *Fetcher {
	return &Fetcher{reader: r, mapper: NewMapper()}
}

// NewFetcherWithClock returns a Fetcher whose row ages are computed
// from c instead of the wall clock.
func NewFetcherWithClock(r k8s.Reader, c clock.PassiveClock) *Fetcher {
	return &Fetcher{reader: r, mapper: NewMapperWithClock(c)}
}

// Fetch validates the selector and returns the matching raw records in
// API return order. There are no retries: a lens reports the cluster as
// it answered, not as a blend of attempts.
func (f *Fetcher) Fetch(ctx context.Context, sel Selector) ([]RawRecord, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if sel.Kind == KindNode {
		return f.fetchNodes(ctx, sel)
	}
	return f.fetchPods(ctx, sel)
}

// Rows fetches and normalizes in one step.
func (f *Fetcher) Rows(ctx context.Context, sel Selector) ([]Row, error) {
	start := time.Now()

	recs, err := f.Fetch(ctx, sel)
	if err != nil {
		queryTotal.WithLabelValues(string(sel.Kind), "error").Inc()
		return nil, err
	}

	rows, err := f.mapper.Rows(recs)
	if err != nil {
		queryTotal.WithLabelValues(string(sel.Kind), "error").Inc()
		return nil, err
	}

	queryTotal.WithLabelValues(string(sel.Kind), "success").Inc()
	queryDuration.WithLabelValues(string(sel.Kind)).Observe(time.Since(start).Seconds())
	return rows, nil
}

func (f *Fetcher) fetchPods(ctx context.Context, sel Selector) ([]RawRecord, error) {
	if sel.Name != "" {
		slog.Debug("fetching pod by name", "namespace", sel.Namespace, "name", sel.Name)
		pod, err := f.reader.GetPod(ctx, sel.Namespace, sel.Name)
		if err != nil {
			if apierrors.IsNotFound(err) {
				return nil, faroserrors.Newf(faroserrors.ErrCodeNotFound,
					"pod %q not found in namespace %q", sel.Name, sel.Namespace)
			}
			return nil, faroserrors.Wrap(faroserrors.ErrCodeAPIUnavailable, "failed to get pod", err)
		}
		return []RawRecord{{Pod: pod}}, nil
	}

	namespace := sel.Namespace
	if sel.AllNamespaces {
		namespace = metav1.NamespaceAll
	}

	slog.Debug("listing pods", "namespace", namespace, "node", sel.Node)
	pods, err := f.reader.ListPods(ctx, namespace)
	if err != nil {
		return nil, faroserrors.Wrap(faroserrors.ErrCodeAPIUnavailable, "failed to list pods", err)
	}

	records := make([]RawRecord, 0, len(pods))
	for i := range pods {
		if sel.Node != "" && pods[i].Spec.NodeName != sel.Node {
			continue
		}
		records = append(records, RawRecord{Pod: &pods[i]})
	}

	slog.Debug("pods fetched", "total", len(pods), "matched", len(records))
	return records, nil
}

func (f *Fetcher) fetchNodes(ctx context.Context, sel Selector) ([]RawRecord, error) {
	if sel.Name != "" {
		slog.Debug("fetching node by name", "name", sel.Name)
		node, err := f.reader.GetNode(ctx, sel.Name)
		if err != nil {
			if apierrors.IsNotFound(err) {
				return nil, faroserrors.Newf(faroserrors.ErrCodeNotFound, "node %q not found", sel.Name)
			}
			return nil, faroserrors.Wrap(faroserrors.ErrCodeAPIUnavailable, "failed to get node", err)
		}
		return []RawRecord{{Node: node}}, nil
	}

	slog.Debug("listing nodes")
	nodes, err := f.reader.ListNodes(ctx)
	if err != nil {
		return nil, faroserrors.Wrap(faroserrors.ErrCodeAPIUnavailable, "failed to list nodes", err)
	}

	records := make([]RawRecord, 0, len(nodes))
	for i := range nodes {
		records = append(records, RawRecord{Node: &nodes[i]})
	}
	return records, nil
}
