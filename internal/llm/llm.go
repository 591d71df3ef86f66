package llm

import "context"

// Client is a minimal LLM interface to allow pluggable providers. The reply
// is returned raw; interpreting it is the reply parser's job.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
