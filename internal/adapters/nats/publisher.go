package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/safeyatra/geomark/internal/core/domain"
)

// Event subjects. The dashboard WebSocket relay and external consumers
// (e.g. the alerting evaluator) subscribe to geo.fence.>.
const (
	subjectCreated = "geo.fence.created."
	subjectUpdated = "geo.fence.updated."
	subjectDeleted = "geo.fence.deleted."
	subjectAlert   = "geo.fence.alert."
)

// FenceEvent is the JSON envelope published for every fence change.
type FenceEvent struct {
	Type  string           `json:"type"` // created | updated | deleted | alert
	Fence *domain.GeoFence `json:"fence"`
	At    time.Time        `json:"at"`
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS, enables JetStream and ensures the fence
// event stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "GEOFENCE_EVENTS",
		Subjects:  []string{"geo.fence.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishFenceCreated(ctx context.Context, f *domain.GeoFence) error {
	return p.publish(subjectCreated+f.ID, "created", f)
}

func (p *Publisher) PublishFenceUpdated(ctx context.Context, f *domain.GeoFence) error {
	return p.publish(subjectUpdated+f.ID, "updated", f)
}

func (p *Publisher) PublishFenceDeleted(ctx context.Context, f *domain.GeoFence) error {
	return p.publish(subjectDeleted+f.ID, "deleted", f)
}

func (p *Publisher) PublishFenceAlert(ctx context.Context, f *domain.GeoFence) error {
	return p.publish(subjectAlert+f.ID, "alert", f)
}

func (p *Publisher) publish(subject, eventType string, f *domain.GeoFence) error {
	data, err := json.Marshal(FenceEvent{Type: eventType, Fence: f, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subject, data)
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. the
// WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
