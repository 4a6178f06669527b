package output

import "context"

// CompletionPort is a raw text-completion backend. Backends may keep a
// prompt/KV cache between calls; Reset discards it.
type CompletionPort interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Reset(ctx context.Context) error
	Ping(ctx context.Context) error
}

type CompletionRequest struct {
	Prompt    string
	Stop      []string
	MaxTokens int
}
