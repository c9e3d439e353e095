package server

import (
	"net/http"
	"regexp"

	"github.com/faroslabs/faros/pkg/serializer"
)

// DefaultAPIVersion answers requests that do not negotiate a version.
const DefaultAPIVersion = "v1"

// vendorAcceptPattern matches the vendor content type
// application/vnd.faros.v1+json and captures the version.
var vendorAcceptPattern = regexp.MustCompile(`^application/vnd\.faros\.(v[0-9]+)\+json$`)

// negotiateAPIVersion picks the API version from the Accept header,
// falling back to the default for plain, absent or unsupported types.
func negotiateAPIVersion(r *http.Request) string {
	m := vendorAcceptPattern.FindStringSubmatch(r.Header.Get("Accept"))
	if m == nil || !isValidAPIVersion(m[1]) {
		return DefaultAPIVersion
	}
	return m[1]
}

// isValidAPIVersion reports whether the server can speak version.
func isValidAPIVersion(version string) bool {
	return version == "v1"
}

// VersionResponse is the build information payload of /version.
type VersionResponse struct {
	Name       string `json:"name" yaml:"name"`
	Version    string `json:"version" yaml:"version"`
	APIVersion string `json:"apiVersion" yaml:"apiVersion"`
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, VersionResponse{
		Name:       s.name,
		Version:    s.version,
		APIVersion: negotiateAPIVersion(r),
	})
}
