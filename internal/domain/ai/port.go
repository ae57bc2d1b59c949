package ai

import "context"

// Client takes a serialized forensic report and returns a structured
// second-opinion verdict as a JSON string.
type Client interface {
	Review(ctx context.Context, reportJSON string) (string, error)
}
