package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/saferoute/internal/core/domain"
)

const (
	// ReportStream holds submitted safety reports until archived.
	ReportStream = "SAFETY_REPORTS"
	// ReportSubject is the subject reports are published on.
	ReportSubject = "safety.reports.submitted"
)

// ReportStreamConfig describes the JetStream stream backing the report pipeline.
var ReportStreamConfig = nats.StreamConfig{
	Name:      ReportStream,
	Subjects:  []string{"safety.reports.>"},
	Retention: nats.WorkQueuePolicy,
	MaxAge:    7 * 24 * time.Hour,
	Storage:   nats.FileStorage,
}

// Publisher implements ports.ReportPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// Connect dials NATS with unlimited reconnects.
func Connect(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}

// EnsureStream creates the report stream, or updates it when it already exists.
func EnsureStream(js nats.JetStreamContext) error {
	cfg := ReportStreamConfig
	if _, err := js.AddStream(&cfg); err != nil {
		if _, err := js.UpdateStream(&cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := Connect(url, "saferoute-api")
	if err != nil {
		return nil, err
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := EnsureStream(js); err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishReport appends a report to the stream, deduplicated on its id.
func (p *Publisher) PublishReport(ctx context.Context, r *domain.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(ReportSubject, data, nats.Context(ctx), nats.MsgId(r.ID))
	return err
}

// IsConnected reports whether the underlying connection is up.
func (p *Publisher) IsConnected() bool {
	return p != nil && p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
