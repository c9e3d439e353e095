package serializer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Reader deserializes a document from a file.
type Reader struct {
	format Format
	in     io.ReadCloser
}

// NewFileReader opens path for decoding in the given format. Unknown
// formats are inferred from the file extension. Callers own Close.
func NewFileReader(format Format, path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %q: %w", path, err)
	}
	if format.IsUnknown() {
		format = FormatFromPath(path)
	}
	return &Reader{format: format, in: f}, nil
}

// Deserialize decodes the file contents into out. The table format is
// write-only and rejected here.
func (r *Reader) Deserialize(out any) error {
	switch r.format {
	case FormatYAML:
		return yaml.NewDecoder(r.in).Decode(out)
	case FormatJSON:
		return json.NewDecoder(r.in).Decode(out)
	}
	return fmt.Errorf("unsupported input format %q", r.format)
}

// Close releases the underlying file. Safe to call repeatedly.
func (r *Reader) Close() error {
	if r.in == nil {
		return nil
	}
	in := r.in
	r.in = nil
	return in.Close()
}
