// Package oci publishes captured documents as OCI artifacts, so cluster
// views can live in the same registries as the workloads they describe.
package oci

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/registry"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/retry"
)

const (
	// ArtifactType identifies cluster view artifacts in a registry.
	ArtifactType = "application/vnd.faros.clusterview.v1"

	// DefaultTag is used when a reference carries no tag.
	DefaultTag = "latest"
)

// PushOptions configure where and how a document is pushed.
type PushOptions struct {
	// Registry is the registry host, e.g. ghcr.io or localhost:5000.
	Registry string

	// Repository is the path within the registry, e.g. acme/views.
	Repository string

	// Tag names the pushed artifact. Empty means DefaultTag.
	Tag string

	// PlainHTTP talks to the registry without TLS, for local
	// registries.
	PlainHTTP bool

	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool

	// Username and Password are static registry credentials. Both empty
	// means anonymous access.
	Username string
	Password string
}

// PushResult reports what was pushed.
type PushResult struct {
	// Reference is the full registry/repository:tag the artifact is
	// addressable by.
	Reference string

	// Digest is the manifest digest.
	Digest string
}

// ValidateRegistryReference checks the registry host and repository
// path against the OCI distribution naming rules.
func ValidateRegistryReference(registryHost, repository string) error {
	ref := registry.Reference{Registry: registryHost, Repository: repository}
	if err := ref.ValidateRegistry(); err != nil {
		return fmt.Errorf("invalid registry %q: %w", registryHost, err)
	}
	if err := ref.ValidateRepository(); err != nil {
		return fmt.Errorf("invalid repository %q: %w", repository, err)
	}
	return nil
}

// ValidateTag checks a tag against the OCI distribution tag rules.
func ValidateTag(tag string) error {
	ref := registry.Reference{Reference: tag}
	if err := ref.ValidateReferenceAsTag(); err != nil {
		return fmt.Errorf("invalid tag %q: %w", tag, err)
	}
	return nil
}

// PushDocument packs data as a single-layer OCI artifact and pushes it
// to the registry in opts. The filename becomes the layer title, so
// registry UIs and oras pull give the blob a sensible name.
func PushDocument(ctx context.Context, opts PushOptions, filename, mediaType string, data []byte) (*PushResult, error) {
	if opts.Tag == "" {
		opts.Tag = DefaultTag
	}
	if err := ValidateRegistryReference(opts.Registry, opts.Repository); err != nil {
		return nil, err
	}
	if err := ValidateTag(opts.Tag); err != nil {
		return nil, err
	}

	store := memory.New()
	manifest, err := packDocument(ctx, store, opts.Tag, filename, mediaType, data)
	if err != nil {
		return nil, err
	}

	repoRef := fmt.Sprintf("%s/%s", opts.Registry, opts.Repository)
	repo, err := remote.NewRepository(repoRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve repository %q: %w", repoRef, err)
	}
	repo.PlainHTTP = opts.PlainHTTP
	repo.Client = authClient(opts)

	slog.Debug("copying artifact to registry",
		"reference", repoRef,
		"tag", opts.Tag,
		"digest", manifest.Digest.String(),
	)

	if _, err := oras.Copy(ctx, store, opts.Tag, repo, opts.Tag, oras.DefaultCopyOptions); err != nil {
		return nil, fmt.Errorf("failed to push %s:%s: %w", repoRef, opts.Tag, err)
	}

	return &PushResult{
		Reference: fmt.Sprintf("%s:%s", repoRef, opts.Tag),
		Digest:    manifest.Digest.String(),
	}, nil
}

// packDocument stores the document blob and a v1.1 artifact manifest
// for it in target, and tags the manifest.
func packDocument(ctx context.Context, target oras.Target, tag, filename, mediaType string, data []byte) (ocispec.Descriptor, error) {
	layer, err := oras.PushBytes(ctx, target, mediaType, data)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("failed to store document layer: %w", err)
	}
	layer.Annotations = map[string]string{ocispec.AnnotationTitle: filename}

	manifest, err := oras.PackManifest(ctx, target, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers: []ocispec.Descriptor{layer},
		ManifestAnnotations: map[string]string{
			ocispec.AnnotationCreated: time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("failed to pack manifest: %w", err)
	}

	if err := target.Tag(ctx, manifest, tag); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("failed to tag manifest: %w", err)
	}

	return manifest, nil
}

// authClient builds the registry HTTP client: retrying transport,
// optional TLS verification skip, static credentials when given.
func authClient(opts PushOptions) *auth.Client {
	httpClient := retry.DefaultClient
	if opts.InsecureTLS {
		httpClient = &http.Client{
			Transport: retry.NewTransport(&http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}),
		}
	}

	client := &auth.Client{
		Client: httpClient,
		Cache:  auth.NewCache(),
	}
	client.SetUserAgent("faros")

	if opts.Username != "" || opts.Password != "" {
		client.Credential = auth.StaticCredential(opts.Registry, auth.Credential{
			Username: opts.Username,
			Password: opts.Password,
		})
	}
	return client
}
