// Package cli implements the command-line interface for faros.
//
// # Overview
//
// The faros CLI is a read-only lens over a Kubernetes cluster: it
// answers "what is running where, in what state" with single API
// calls and plain aligned tables. It never writes to the cluster.
//
// # Commands
//
// get - Query pods, nodes, images or container environments:
//
//	faros get pods [NAME] [-n NAMESPACE | -A] [-N NODE] [-o normal|wide|json|yaml]
//	faros get nodes [NAME] [-o wide]
//	faros get images [-n NAMESPACE | -A]
//	faros get env [-n NAMESPACE] [--filter REGEX]
//
// Each get is at most one API call: a named lookup is a get, anything
// else is a single scoped list. The node filter runs client-side over
// the returned list. --show-labels and --show-annotations spread
// metadata keys into their own columns, derived from the rows actually
// fetched; --exclude-key prunes noisy keys with wildcard patterns.
//
// images and env are derived from the selected pods: images is the
// distinct container image inventory, env lists container environments
// with secret and config map values shown as references, never
// resolved.
//
// snapshot - Capture the cluster into one view document:
//
//	faros snapshot [--output FILE|oci://REG/REPO[:TAG]] [--format yaml|json]
//	faros snapshot --from-file view.yaml --output oci://localhost:5000/views/dev --plain-http
//
// Captures all pods and nodes in parallel into a self-describing
// ClusterView document. The document can be written to stdout, a file,
// or pushed to an OCI registry as a single-layer artifact.
//
// serve - Expose the lens over HTTP:
//
//	faros serve [--port PORT] [--address ADDR] [--rate-limit RPS]
//
// Serves GET /api/v1/pods and GET /api/v1/nodes with the same
// selector semantics as get, plus /healthz, /readyz, /version and
// Prometheus /metrics. Requests carry ids and are rate limited per
// client address.
//
// version - Print build information:
//
//	faros version [--format yaml|json]
//
// # Global Flags
//
//	--verbose, -v  Increase log verbosity; repeat up to -vvvv for trace
//	--log-json     Output logs in JSON format
//	--help, -h     Show command help
//
// # Output Formats
//
// Tables (default for get) are aligned with spaces only, one header
// line, one row per resource, and <none> for absent values, so they
// pipe cleanly into awk and grep. json and yaml render the same rows
// structurally for programmatic consumption.
//
// # Environment Variables
//
//	KUBECONFIG   Path to kubeconfig file
//	PORT         Listen port for serve
//	RATE_LIMIT   Per-client requests per second for serve
//	LOG_LEVEL    Log level for serve (debug, info, warn, error)
//
// # Exit Codes
//
//	0  Success, including empty results
//	1  Runtime failure (API unreachable, malformed records)
//	2  Invalid selector or arguments
//	3  Named resource not found
//
// # Architecture
//
// The CLI uses the urfave/cli/v3 framework and delegates to
// specialized packages:
//   - pkg/query - Selector validation, fetching, row normalization
//   - pkg/render - Column policy and table output
//   - pkg/snapshotter - Cluster view capture
//   - pkg/oci - OCI artifact publication
//   - pkg/api, pkg/server - The HTTP surface
//   - pkg/serializer - Output formatting
//   - pkg/logging - Structured logging
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/faroslabs/faros/pkg/cli.version=1.0.0'"
package cli
