// Package illuminate holds the LLM-facing side of the workspace: the client
// abstraction, per-call configuration resolution, and one dispatcher per bulk
// operation kind. Dispatchers are the execution collaborators handed to
// bulkop controllers; they load the record, call the model, and persist the
// result.
package illuminate

import "context"

// Completion is the result of one model call.
type Completion struct {
	Text string
	Cost float64
}

// Call is a single prompt with its resolved configuration.
type Call struct {
	System string
	Prompt string
	Config CallConfig
}

// Client abstracts the model provider so tests can run against a
// deterministic fake.
type Client interface {
	Complete(ctx context.Context, call Call) (*Completion, error)
	GenerateImage(ctx context.Context, model, prompt string) ([]byte, error)
}
