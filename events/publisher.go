// Package events announces applied elevation profiles to other services.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"profile-server/models"

	"github.com/nats-io/nats.go"
)

// ProfileUpdated is the payload published after a profile is applied.
type ProfileUpdated struct {
	ID             string           `json:"id"`
	Bounds         models.Bounds    `json:"bounds"`
	Path           [2]models.LatLng `json:"path"`
	Generation     uint64           `json:"generation"`
	Samples        int              `json:"samples"`
	MaxElevation   float64          `json:"max_elevation"`
	TransectMeters float64          `json:"transect_meters"`
	SampledAt      time.Time        `json:"sampled_at"`
}

// NewProfileUpdated summarizes rec; the samples themselves are not sent.
func NewProfileUpdated(rec models.ProfileRecord) ProfileUpdated {
	max, _ := rec.Samples.MaxElevation()
	return ProfileUpdated{
		ID:             rec.ID,
		Bounds:         rec.Bounds,
		Path:           rec.Path,
		Generation:     rec.Generation,
		Samples:        len(rec.Samples),
		MaxElevation:   max,
		TransectMeters: rec.TransectMeters,
		SampledAt:      rec.SampledAt,
	}
}

// Publisher sends profile notifications.
type Publisher interface {
	PublishProfileUpdated(ctx context.Context, rec models.ProfileRecord) error
	Close()
}

// NatsPublisher publishes on a core NATS subject.
type NatsPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNatsPublisher connects to url and keeps reconnecting in the background.
func NewNatsPublisher(url, subject string) (*NatsPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("profile-server"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[NatsPublisher] Disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Printf("[NatsPublisher] Reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	log.Printf("[NatsPublisher] Publishing profile updates on %q", subject)
	return &NatsPublisher{conn: conn, subject: subject}, nil
}

func (p *NatsPublisher) PublishProfileUpdated(ctx context.Context, rec models.ProfileRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(NewProfileUpdated(rec))
	if err != nil {
		return fmt.Errorf("marshal profile event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *NatsPublisher) Close() {
	_ = p.conn.Drain()
}

// NoopPublisher drops every event. Used when NATS is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishProfileUpdated(context.Context, models.ProfileRecord) error { return nil }

func (NoopPublisher) Close() {}
