package notify

import "context"

// NoopPublisher discards all events. Used in tests and when no broker is
// configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, subject string, event OrderEvent) {}

func (NoopPublisher) Close() {}
