// Package render turns normalized rows into aligned tabular text. The
// column set is derived per invocation, after fetching, because the
// dynamic columns depend on which label and annotation keys the
// returned rows actually carry.
package render

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/faroslabs/faros/pkg/query"
)

// None is the placeholder for a value a row does not have. It is
// distinct from an empty string, which is a present-but-empty value.
const None = "<none>"

// Column pairs a header with the extraction of its cell value.
type Column struct {
	Header string
	Value  func(row query.Row) string
}

// ColumnSet is the ordered set of columns for one render.
type ColumnSet []Column

// Headers returns the column headers in order.
func (cs ColumnSet) Headers() []string {
	headers := make([]string, len(cs))
	for i, col := range cs {
		headers[i] = col.Header
	}
	return headers
}

// Policy derives the column set from the selector and the fetched rows.
// The zero value is a usable policy with no key exclusions.
type Policy struct {
	// Exclude removes matching label/annotation keys before dynamic
	// columns are derived.
	Exclude KeyExcluder
}

// Columns produces the ordered column set: fixed columns for the
// selector's kind and mode, then dynamic columns for the requested
// attribute sets. With zero rows the fixed set still comes out in full,
// so an empty result renders as a header-only table.
//
// When exactly one of ShowLabels and ShowAnnotations is set, every
// distinct key across the row set becomes its own column, ordered by
// collation. When both are set, per-key expansion of both families
// would routinely outgrow a terminal, so the keys collapse into two
// aggregate LABELS and ANNOTATIONS columns of k=v pairs instead.
func (p Policy) Columns(sel query.Selector, rows []query.Row) ColumnSet {
	cols := fixedColumns(sel)

	switch {
	case sel.ShowLabels && sel.ShowAnnotations:
		cols = append(cols, p.aggregateColumn("LABELS", labelsOf))
		cols = append(cols, p.aggregateColumn("ANNOTATIONS", annotationsOf))
	case sel.ShowLabels:
		cols = append(cols, p.keyColumns(rows, labelsOf)...)
	case sel.ShowAnnotations:
		cols = append(cols, p.keyColumns(rows, annotationsOf)...)
	}

	return cols
}

func fixedColumns(sel query.Selector) ColumnSet {
	var cols ColumnSet

	if sel.Kind == query.KindPod && sel.AllNamespaces {
		cols = append(cols, Column{Header: "NAMESPACE", Value: func(r query.Row) string { return orNone(r.Namespace) }})
	}

	cols = append(cols,
		Column{Header: "NAME", Value: func(r query.Row) string { return orNone(r.Name) }},
		Column{Header: "STATUS", Value: func(r query.Row) string { return orNone(r.Status) }},
		Column{Header: "AGE", Value: func(r query.Row) string { return r.Age.String() }},
	)

	if sel.Mode != query.ModeWide {
		return cols
	}

	if sel.Kind == query.KindNode {
		return append(cols,
			Column{Header: "ROLES", Value: func(r query.Row) string { return orNone(r.Roles) }},
			Column{Header: "VERSION", Value: func(r query.Row) string { return orNone(r.Version) }},
			Column{Header: "INTERNAL-IP", Value: func(r query.Row) string { return orNone(r.IP) }},
		)
	}

	return append(cols,
		Column{Header: "NODE", Value: func(r query.Row) string { return orNone(r.NodeName) }},
		Column{Header: "IP", Value: func(r query.Row) string { return orNone(r.IP) }},
	)
}

// keyColumns expands every distinct key across the row set into its own
// column. Ordering comes from the und-locale collator, so the same key
// set always yields the same columns no matter what order the rows
// arrived in.
func (p Policy) keyColumns(rows []query.Row, attrs func(query.Row) map[string]string) ColumnSet {
	seen := map[string]bool{}
	var keys []string
	for _, row := range rows {
		for key := range attrs(row) {
			if !seen[key] && !p.Exclude.Excludes(key) {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	collate.New(language.Und).SortStrings(keys)

	cols := make(ColumnSet, 0, len(keys))
	for _, key := range keys {
		key := key
		cols = append(cols, Column{
			Header: strings.ToUpper(key),
			Value: func(r query.Row) string {
				if value, ok := attrs(r)[key]; ok {
					return value
				}
				return None
			},
		})
	}
	return cols
}

// aggregateColumn joins a row's keys into one sorted k=v list.
func (p Policy) aggregateColumn(header string, attrs func(query.Row) map[string]string) Column {
	return Column{
		Header: header,
		Value: func(r query.Row) string {
			kv := p.Exclude.Prune(attrs(r))
			if len(kv) == 0 {
				return None
			}
			pairs := make([]string, 0, len(kv))
			for key, value := range kv {
				pairs = append(pairs, key+"="+value)
			}
			sort.Strings(pairs)
			return strings.Join(pairs, ",")
		},
	}
}

func labelsOf(r query.Row) map[string]string      { return r.Labels }
func annotationsOf(r query.Row) map[string]string { return r.Annotations }

func orNone(s string) string {
	if s == "" {
		return None
	}
	return s
}
