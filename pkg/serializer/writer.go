// Package serializer writes faros documents to stdout, files or HTTP
// responses in json, yaml or a flattened key/value table.
package serializer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format identifies an output encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// IsUnknown reports whether the format is none of the supported encodings.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTable:
		return false
	}
	return true
}

// SupportedFormats lists the accepted format names for flag help text.
func SupportedFormats() []string {
	return []string{string(FormatJSON), string(FormatYAML), string(FormatTable)}
}

// FormatFromPath infers the format from a file extension, defaulting to
// yaml for unknown extensions.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatYAML
}

// Serializer serializes a document to an output destination.
type Serializer interface {
	Serialize(ctx context.Context, data any) error
}

// Closer is implemented by writers that hold a resource to release.
type Closer interface {
	Close() error
}

// Writer serializes documents to an io.Writer in a fixed format.
type Writer struct {
	format Format
	out    io.Writer
	closer io.Closer
}

// NewWriter returns a Writer for the given format and destination.
// Unknown formats fall back to JSON, nil destinations to stdout.
func NewWriter(format Format, out io.Writer) *Writer {
	if format.IsUnknown() {
		format = FormatJSON
	}
	if out == nil {
		out = os.Stdout
	}
	return &Writer{format: format, out: out}
}

// NewStdoutWriter returns a Writer targeting stdout.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(format, os.Stdout)
}

// NewFileWriterOrStdout returns a Writer targeting the given path, or
// stdout when the path is empty or the conventional "-". The file is
// created eagerly so permission problems surface before any fetching
// happens. Callers own Close.
func NewFileWriterOrStdout(format Format, path string) (*Writer, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == StdoutURI {
		return NewStdoutWriter(format), nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %q: %w", path, err)
	}

	w := NewWriter(format, f)
	w.closer = f
	return w, nil
}

// Close releases the underlying file, if any. Safe to call repeatedly
// and on stdout-backed writers.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	c := w.closer
	w.closer = nil
	return c.Close()
}

// Serialize encodes data in the writer's format.
func (w *Writer) Serialize(ctx context.Context, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch w.format {
	case FormatYAML:
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to serialize to yaml: %w", err)
		}
		return enc.Close()
	case FormatTable:
		return w.serializeTable(data)
	default:
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to serialize to json: %w", err)
		}
		return nil
	}
}

// serializeTable renders data as a two-column FIELD/VALUE table with
// nested structures flattened into dotted paths.
func (w *Writer) serializeTable(data any) error {
	pairs := flatten("", reflect.ValueOf(data))

	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE")
	if len(pairs) == 0 {
		fmt.Fprintln(tw, "<empty>\t<empty>")
	}
	for _, p := range pairs {
		fmt.Fprintf(tw, "%s\t%s\n", p.key, p.value)
	}
	return tw.Flush()
}

type fieldValue struct {
	key   string
	value string
}

func flatten(prefix string, v reflect.Value) []fieldValue {
	if !v.IsValid() {
		return leaf(prefix, "<nil>")
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return leaf(prefix, "<nil>")
		}
		return flatten(prefix, v.Elem())
	case reflect.Struct:
		var pairs []fieldValue
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			pairs = append(pairs, flatten(joinPath(prefix, f.Name), v.Field(i))...)
		}
		return pairs
	case reflect.Map:
		keys := make([]string, 0, v.Len())
		byKey := make(map[string]reflect.Value, v.Len())
		for _, k := range v.MapKeys() {
			name := fmt.Sprintf("%v", k.Interface())
			keys = append(keys, name)
			byKey[name] = v.MapIndex(k)
		}
		sort.Strings(keys)
		var pairs []fieldValue
		for _, name := range keys {
			pairs = append(pairs, flatten(joinPath(prefix, name), byKey[name])...)
		}
		return pairs
	case reflect.Slice, reflect.Array:
		var pairs []fieldValue
		for i := 0; i < v.Len(); i++ {
			pairs = append(pairs, flatten(fmt.Sprintf("%s[%d]", prefix, i), v.Index(i))...)
		}
		return pairs
	default:
		return leaf(prefix, fmt.Sprintf("%v", v.Interface()))
	}
}

func leaf(key, value string) []fieldValue {
	if key == "" {
		key = "<root>"
	}
	return []fieldValue{{key: key, value: value}}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
