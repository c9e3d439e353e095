package serializer

const (
	// StdoutURI is the special path indicating output should be written
	// to stdout.
	StdoutURI = "-"
)
