package snapshotter

import "context"

// Snapshotter is the interface that wraps the Capture method.
// Capture assembles a cluster view with the provided context and
// serializes it.
type Snapshotter interface {
	Capture(ctx context.Context) error
}
