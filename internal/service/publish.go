package service

import (
	"context"

	"example.com/storefront/internal/events"
	"example.com/storefront/internal/logx"
)

// publish never fails the caller; a lost event is logged and dropped.
func publish(ctx context.Context, pub events.Publisher, ev events.Event) {
	if err := pub.Publish(ctx, ev); err != nil {
		logx.Warn().Err(err).Str("event", ev.Type).Str("key", ev.Key).Msg("publish event failed")
	}
}
