package ai

import "context"

// Client sends one system/user exchange and returns the raw JSON answer.
type Client interface {
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}
