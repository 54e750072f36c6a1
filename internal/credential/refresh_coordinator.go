package credential

import (
	"context"

	"vertexchat-go/internal/oauth"

	"golang.org/x/sync/singleflight"
)

// RefreshCoordinator coalesces concurrent token fetches per key.
type RefreshCoordinator interface {
	// Do runs fn at most once per key at a time. Callers arriving while a
	// fetch is in flight wait for it and receive its result; shared reports
	// whether the result was handed to more than one caller.
	Do(ctx context.Context, key string, fn func(ctx context.Context) (oauth.AccessToken, error)) (tok oauth.AccessToken, shared bool, err error)
}

// InflightCoordinator is a RefreshCoordinator backed by singleflight.
type InflightCoordinator struct {
	group singleflight.Group
}

func NewInflightCoordinator() *InflightCoordinator {
	return &InflightCoordinator{}
}

// Do detaches the fetch from the cancellation of whichever caller started
// it, so one caller giving up does not fail the others. A caller whose ctx
// ends stops waiting and gets ctx.Err().
func (c *InflightCoordinator) Do(ctx context.Context, key string, fn func(ctx context.Context) (oauth.AccessToken, error)) (oauth.AccessToken, bool, error) {
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case <-ctx.Done():
		return oauth.AccessToken{}, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return oauth.AccessToken{}, res.Shared, res.Err
		}
		return res.Val.(oauth.AccessToken), res.Shared, nil
	}
}
