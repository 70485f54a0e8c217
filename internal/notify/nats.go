package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes lifecycle events to a NATS server.
type NATSPublisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewNATSPublisher connects to the given NATS URL. The connection retries
// in the background, so a broker outage at startup is not fatal.
func NewNATSPublisher(url string, logger *slog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("verdandi"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{conn: conn, logger: logger}, nil
}

// Publish emits one event. Failures are logged and swallowed; the order
// lifecycle must not depend on the broker being up.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, event OrderEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("notify: marshal event", "subject", subject, "error", err)
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn("notify: publish failed",
			"subject", subject,
			"order_id", event.OrderID,
			"error", err,
		)
	}
}

// Close drains the connection so buffered publishes flush before shutdown.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("notify: drain failed", "error", err)
	}
}
