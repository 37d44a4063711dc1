package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/saferoute/internal/core/domain"
	"github.com/samirrijal/saferoute/internal/pkg/logging"
)

// Subscriber implements ports.ReportSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS and makes sure the report stream exists.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := Connect(url, "saferoute-reporter")
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
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeReports delivers each submitted report to handler. A handler error
// triggers redelivery, up to three attempts. Undecodable messages are
// terminated.
func (s *Subscriber) SubscribeReports(ctx context.Context, handler func(ctx context.Context, r *domain.Report) error) error {
	log := logging.FromContext(ctx)
	sub, err := s.js.Subscribe(ReportSubject, func(msg *nats.Msg) {
		var r domain.Report
		if err := json.Unmarshal(msg.Data, &r); err != nil {
			log.Error("decode report", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &r); err != nil {
			log.Warn("archive report", "report_id", r.ID, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("report-archiver"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
