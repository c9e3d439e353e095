package query

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/distribution/reference"

	faroserrors "github.com/faroslabs/faros/pkg/errors"
)

// ImageRow is one distinct container image in use across the selected
// pods.
type ImageRow struct {
	Image     string   `json:"image" yaml:"image"`
	Tag       string   `json:"tag,omitempty" yaml:"tag,omitempty"`
	Count     int      `json:"count" yaml:"count"`
	Locations []string `json:"locations,omitempty" yaml:"locations,omitempty"`
}

// Images lists the distinct container images referenced by the pods the
// selector matches, covering regular, init and ephemeral containers.
// References are normalized to their familiar form; a reference the
// parser rejects is kept verbatim rather than dropped, since an
// inventory that hides what it cannot parse is worse than one with an
// odd-looking line.
func (f *Fetcher) Images(ctx context.Context, sel Selector) ([]ImageRow, error) {
	if sel.Kind != KindPod {
		return nil, faroserrors.New(faroserrors.ErrCodeInvalidSelector, "image inventories are derived from pods")
	}

	recs, err := f.Fetch(ctx, sel)
	if err != nil {
		return nil, err
	}

	imageLocations := make(map[string][]string)
	recordImage := func(imageRef, location string) {
		if imageRef == "" {
			return
		}
		imageLocations[imageRef] = append(imageLocations[imageRef], location)
	}

	for _, rec := range recs {
		pod := rec.Pod
		locationPrefix := fmt.Sprintf("%s/%s", pod.Namespace, pod.Name)

		for _, container := range pod.Spec.Containers {
			recordImage(container.Image, fmt.Sprintf("%s:%s", locationPrefix, container.Name))
		}
		for _, container := range pod.Spec.InitContainers {
			recordImage(container.Image, fmt.Sprintf("%s:init-%s", locationPrefix, container.Name))
		}
		for _, container := range pod.Spec.EphemeralContainers {
			recordImage(container.Image, fmt.Sprintf("%s:ephemeral-%s", locationPrefix, container.Name))
		}
	}

	rows := make([]ImageRow, 0, len(imageLocations))
	for imageRef, locations := range imageLocations {
		name, tag := splitImageRef(imageRef)
		sort.Strings(locations)
		rows = append(rows, ImageRow{
			Image:     name,
			Tag:       tag,
			Count:     len(locations),
			Locations: locations,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Image != rows[j].Image {
			return rows[i].Image < rows[j].Image
		}
		return rows[i].Tag < rows[j].Tag
	})

	slog.Debug("collected container images", slog.Int("count", len(rows)))
	return rows, nil
}

// splitImageRef normalizes an image reference into a familiar name and
// a tag. Untagged references carry the implicit latest tag; digested
// ones report the digest.
func splitImageRef(imageRef string) (name, tag string) {
	named, err := reference.ParseNormalizedNamed(imageRef)
	if err != nil {
		slog.Warn("unparsable image reference kept verbatim", "image", imageRef, "error", err)
		return imageRef, ""
	}

	name = reference.FamiliarName(named)
	switch ref := named.(type) {
	case reference.Tagged:
		tag = ref.Tag()
	case reference.Digested:
		tag = ref.Digest().String()
	default:
		tag = "latest"
	}
	return name, tag
}
