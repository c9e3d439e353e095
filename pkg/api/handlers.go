package api

import (
	"fmt"
	"net/http"
	"strconv"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	faroserrors "github.com/faroslabs/faros/pkg/errors"
	"github.com/faroslabs/faros/pkg/query"
	"github.com/faroslabs/faros/pkg/serializer"
	"github.com/faroslabs/faros/pkg/server"
)

// Handler answers the query routes from one shared fetcher.
type Handler struct {
	fetcher *query.Fetcher
}

// NewHandler returns a Handler reading through f.
func NewHandler(f *query.Fetcher) *Handler {
	return &Handler{fetcher: f}
}

// ListResponse is the payload of a successful pod or node query.
type ListResponse struct {
	Kind  string      `json:"kind" yaml:"kind"`
	Count int         `json:"count" yaml:"count"`
	Items []query.Row `json:"items" yaml:"items"`
}

// HandlePods handles GET /api/v1/pods
func (h *Handler) HandlePods(w http.ResponseWriter, r *http.Request) {
	h.handleRows(w, r, query.KindPod)
}

// HandleNodes handles GET /api/v1/nodes
func (h *Handler) HandleNodes(w http.ResponseWriter, r *http.Request) {
	h.handleRows(w, r, query.KindNode)
}

func (h *Handler) handleRows(w http.ResponseWriter, r *http.Request, kind query.Kind) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		server.WriteError(w, r, http.StatusMethodNotAllowed, faroserrors.ErrCodeMethodNotAllowed,
			"only GET is supported", false, nil)
		return
	}

	sel, err := selectorFromRequest(r, kind)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "invalid query", nil)
		return
	}

	showLabels, err := boolParam(r, "labels", true)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "invalid query", nil)
		return
	}
	showAnnotations, err := boolParam(r, "annotations", true)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "invalid query", nil)
		return
	}

	rows, err := h.fetcher.Rows(r.Context(), sel)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "query failed", map[string]any{"kind": string(kind)})
		return
	}

	for i := range rows {
		if !showLabels {
			rows[i].Labels = nil
		}
		if !showAnnotations {
			rows[i].Annotations = nil
		}
	}

	serializer.RespondJSON(w, http.StatusOK, ListResponse{
		Kind:  string(kind),
		Count: len(rows),
		Items: rows,
	})
}

// selectorFromRequest builds and validates a selector from the query
// string. A pod request naming neither namespace, name nor
// allNamespaces spans all namespaces; a named pod without a namespace
// looks in default.
func selectorFromRequest(r *http.Request, kind query.Kind) (query.Selector, error) {
	q := r.URL.Query()

	allNamespaces, err := boolParam(r, "allNamespaces", false)
	if err != nil {
		return query.Selector{}, err
	}

	sel := query.Selector{
		Kind:          kind,
		Namespace:     q.Get("namespace"),
		AllNamespaces: allNamespaces,
		Name:          q.Get("name"),
		Node:          q.Get("node"),
		Mode:          query.ModeNormal,
	}

	if kind == query.KindPod && !sel.AllNamespaces && sel.Namespace == "" {
		if sel.Name == "" {
			sel.AllNamespaces = true
		} else {
			sel.Namespace = metav1.NamespaceDefault
		}
	}

	if err := sel.Validate(); err != nil {
		return query.Selector{}, err
	}
	return sel, nil
}

// boolParam parses an optional boolean query parameter strictly:
// absent means fallback, anything strconv will not parse is an
// invalid request.
func boolParam(r *http.Request, name string, fallback bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, faroserrors.New(faroserrors.ErrCodeInvalidRequest,
			fmt.Sprintf("parameter %q must be a boolean, got %q", name, raw))
	}
	return v, nil
}
