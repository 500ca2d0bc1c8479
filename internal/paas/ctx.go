package paas

import "context"

type clientKey struct{}

// WithClient stores p in ctx so background jobs can mirror logs without plumbing.
func WithClient(ctx context.Context, p *Client) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, clientKey{}, p)
}

func ClientFromContext(ctx context.Context) *Client {
	if ctx == nil {
		return nil
	}
	p, _ := ctx.Value(clientKey{}).(*Client)
	return p
}
