package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/urfave/cli/v3"

	faroserrors "github.com/faroslabs/faros/pkg/errors"
	"github.com/faroslabs/faros/pkg/k8s"
	"github.com/faroslabs/faros/pkg/query"
	"github.com/faroslabs/faros/pkg/render"
	"github.com/faroslabs/faros/pkg/serializer"
)

// resource is what the get command can list. Pods and nodes go through
// the row pipeline; images and env are listings derived from pods.
type resource string

const (
	resourcePods   resource = "pods"
	resourceNodes  resource = "nodes"
	resourceImages resource = "images"
	resourceEnv    resource = "env"
)

// extraResourceAliases covers the spellings that are not plain pod or
// node kinds; those come from query.ParseKind.
var extraResourceAliases = map[string]resource{
	"image":       resourceImages,
	"images":      resourceImages,
	"img":         resourceImages,
	"env":         resourceEnv,
	"environment": resourceEnv,
}

// maxSuggestionDistance bounds how far a typo may be from a known
// resource name before "did you mean" stays quiet.
const maxSuggestionDistance = 2

func getCmd() *cli.Command {
	return &cli.Command{
		Name:                  "get",
		EnableShellCompletion: true,
		Usage:                 "Fetch pods, nodes, images or container environments and render them",
		ArgsUsage:             "RESOURCE [NAME]",
		Description: `Queries the cluster for one resource kind and renders the result as an
aligned table. Each invocation issues at most one API call: a named
lookup is a get, everything else is a single scoped list.

RESOURCE is pods, nodes, images or env (kubectl-style short forms like
po and no work too). Images and env are derived from the selected pods.

# Examples

Pods of the current namespace:
  faros get pods

Pods everywhere, one line per pod per namespace:
  faros get pods -A

One pod, wide layout, labels spread into columns:
  faros get pods api-7f86d -o wide --show-labels

Pods of a namespace running on one node:
  faros get pods -n team-a -N worker-3

All distinct images in a namespace:
  faros get images -n team-a

Container environments, app containers only:
  faros get env -n team-a --filter '^app'`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "namespace",
				Aliases: []string{"n"},
				Usage:   "namespace to query (default: the kubeconfig context namespace)",
			},
			&cli.BoolFlag{
				Name:    "all-namespaces",
				Aliases: []string{"A"},
				Usage:   "query across every namespace",
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"p"},
				Usage:   "select a single resource by name (same as the NAME argument)",
			},
			&cli.StringFlag{
				Name:    "node",
				Aliases: []string{"N"},
				Usage:   "keep only pods scheduled on this node",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "normal",
				Usage:   "output mode: normal, wide, json or yaml",
			},
			&cli.BoolFlag{
				Name:    "show-labels",
				Aliases: []string{"labels"},
				Usage:   "add one column per label key found across the result",
			},
			&cli.BoolFlag{
				Name:    "show-annotations",
				Aliases: []string{"annotations"},
				Usage:   "add one column per annotation key found across the result",
			},
			&cli.StringSliceFlag{
				Name:  "exclude-key",
				Usage: "drop matching keys from label and annotation columns (wildcards: prefix*, *suffix, *mid*)",
			},
			&cli.StringFlag{
				Name:  "filter",
				Usage: "env only: container name regex, prefix with ! to invert",
			},
			kubeconfigFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			kubeconfig := cmd.String("kubeconfig")
			clientset, _, err := k8s.BuildKubeClient(kubeconfig)
			if err != nil {
				return faroserrors.Wrap(faroserrors.ErrCodeAPIUnavailable, "failed to build kubernetes client", err)
			}
			fetcher := query.NewFetcher(k8s.NewReader(clientset))
			return runGet(ctx, cmd, fetcher, k8s.DefaultNamespace(kubeconfig), os.Stdout)
		},
	}
}

// runGet carries a parsed get invocation through the pipeline: resolve
// what is asked for, validate it, fetch, then render. It is the whole
// command minus the cluster connection, so tests can drive it with a
// fake-backed fetcher.
func runGet(ctx context.Context, cmd *cli.Command, fetcher *query.Fetcher, defaultNamespace string, out io.Writer) error {
	res, err := resolveResource(cmd.Args().First())
	if err != nil {
		return err
	}

	name, err := resolveName(cmd)
	if err != nil {
		return err
	}

	mode, outFormat, err := parseGetOutput(cmd.String("output"))
	if err != nil {
		return err
	}

	filterExpr := cmd.String("filter")
	if filterExpr != "" && res != resourceEnv {
		return faroserrors.New(faroserrors.ErrCodeInvalidSelector, "--filter only applies to env listings")
	}

	sel := query.Selector{
		Kind:            query.KindPod,
		Namespace:       cmd.String("namespace"),
		AllNamespaces:   cmd.Bool("all-namespaces"),
		Name:            name,
		Node:            cmd.String("node"),
		ShowLabels:      cmd.Bool("show-labels"),
		ShowAnnotations: cmd.Bool("show-annotations"),
		Mode:            mode,
	}
	if res == resourceNodes {
		sel.Kind = query.KindNode
	}

	if err := sel.Validate(); err != nil {
		return err
	}
	if sel.Kind == query.KindPod && sel.Namespace == "" && !sel.AllNamespaces {
		sel.Namespace = defaultNamespace
	}

	slog.Debug("resolved query",
		"resource", string(res),
		"kind", string(sel.Kind),
		"namespace", sel.Namespace,
		"allNamespaces", sel.AllNamespaces,
		"name", sel.Name,
		"node", sel.Node,
		"mode", string(sel.Mode),
	)

	switch res {
	case resourceImages:
		return runGetImages(ctx, fetcher, sel, outFormat, out)
	case resourceEnv:
		return runGetEnv(ctx, fetcher, sel, filterExpr, outFormat, out)
	}

	rows, err := fetcher.Rows(ctx, sel)
	if err != nil {
		return err
	}

	if outFormat != "" {
		return serializer.NewWriter(outFormat, out).Serialize(ctx, rows)
	}

	policy := render.Policy{Exclude: render.KeyExcluder(cmd.StringSlice("exclude-key"))}
	return render.Write(out, policy.Columns(sel, rows), rows)
}

func runGetImages(ctx context.Context, fetcher *query.Fetcher, sel query.Selector, outFormat serializer.Format, out io.Writer) error {
	images, err := fetcher.Images(ctx, sel)
	if err != nil {
		return err
	}

	if outFormat != "" {
		return serializer.NewWriter(outFormat, out).Serialize(ctx, images)
	}

	cells := make([][]string, 0, len(images))
	for _, img := range images {
		cells = append(cells, []string{img.Image, img.Tag, strconv.Itoa(img.Count)})
	}
	return render.WriteSimple(out, []string{"IMAGE", "TAG", "COUNT"}, cells)
}

func runGetEnv(ctx context.Context, fetcher *query.Fetcher, sel query.Selector, filterExpr string, outFormat serializer.Format, out io.Writer) error {
	filter, err := query.ParseEnvFilter(filterExpr)
	if err != nil {
		return err
	}

	envs, err := fetcher.EnvVars(ctx, sel, filter)
	if err != nil {
		return err
	}

	if outFormat != "" {
		return serializer.NewWriter(outFormat, out).Serialize(ctx, envs)
	}

	headers := []string{"POD", "CONTAINER", "ENV"}
	if sel.AllNamespaces {
		headers = append([]string{"NAMESPACE"}, headers...)
	}

	cells := make([][]string, 0, len(envs))
	for _, env := range envs {
		cell := []string{env.Pod, env.Container, strings.Join(env.Env, ",")}
		if sel.AllNamespaces {
			cell = append([]string{env.Namespace}, cell...)
		}
		cells = append(cells, cell)
	}
	return render.WriteSimple(out, headers, cells)
}

// resolveResource maps the RESOURCE argument to what get should list.
// Unknown spellings within a small edit distance of a known one earn a
// suggestion instead of a bare rejection.
func resolveResource(arg string) (resource, error) {
	trimmed := strings.ToLower(strings.TrimSpace(arg))
	if trimmed == "" {
		return "", faroserrors.Newf(faroserrors.ErrCodeInvalidSelector,
			"no resource given, expected one of: %s", strings.Join(knownResourceNames(), ", "))
	}

	if res, ok := extraResourceAliases[trimmed]; ok {
		return res, nil
	}
	if kind, err := query.ParseKind(trimmed); err == nil {
		if kind == query.KindNode {
			return resourceNodes, nil
		}
		return resourcePods, nil
	}

	if near := nearestResource(trimmed); near != "" {
		return "", faroserrors.Newf(faroserrors.ErrCodeInvalidSelector,
			"unknown resource %q, did you mean %q?", arg, near)
	}
	return "", faroserrors.Newf(faroserrors.ErrCodeInvalidSelector,
		"unknown resource %q, expected one of: %s", arg, strings.Join(knownResourceNames(), ", "))
}

// nearestResource finds the closest known spelling within
// maxSuggestionDistance, or "" when nothing is close enough. Candidates
// are walked in sorted order so ties resolve deterministically.
func nearestResource(arg string) string {
	best, bestDistance := "", maxSuggestionDistance+1
	for _, candidate := range knownResourceNames() {
		if d := levenshtein.ComputeDistance(arg, candidate); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best
}

func knownResourceNames() []string {
	names := query.KnownKindNames()
	for alias := range extraResourceAliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// resolveName reconciles the NAME argument with the --name flag. Both
// are accepted for muscle-memory reasons; giving two different names is
// ambiguous and rejected.
func resolveName(cmd *cli.Command) (string, error) {
	flagName := cmd.String("name")
	argName := cmd.Args().Get(1)
	switch {
	case flagName == "":
		return argName, nil
	case argName == "" || argName == flagName:
		return flagName, nil
	}
	return "", faroserrors.Newf(faroserrors.ErrCodeInvalidSelector,
		"resource name given twice: %q as argument and %q via --name", argName, flagName)
}
