package snapshotter

const (
	// APIDomain is the API domain for cluster view resources
	APIDomain = "faros.dev"

	// APIVersion is the current API version for cluster views
	APIVersion = "v1"

	// FullAPIVersion is the complete API version string
	FullAPIVersion = APIDomain + "/" + APIVersion

	// Kind is the resource kind for cluster views
	Kind = "ClusterView"
)
