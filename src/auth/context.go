package auth

import (
	"context"
)

type contextKey string

const ClientKey contextKey = "client"

// Client identifies the authenticated API consumer for a request.
type Client struct {
	Name string
}

func GetClientFromContext(ctx context.Context) (*Client, bool) {
	client, ok := ctx.Value(ClientKey).(*Client)
	return client, ok
}
