// Package kafka publishes newly admitted incidents to a topic so downstream
// consumers see each real-world incident exactly once.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/trafficpulse/waze-incident-service/internal/config"
	"github.com/trafficpulse/waze-incident-service/internal/domain"
)

// Announcer produces one message per incident admitted to the master set.
// Duplicates never reach it, the accumulator already filtered them, so the
// topic carries the deduplicated stream. It implements poller.Announcer.
type Announcer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewAnnouncer creates a Kafka producer for the configured topic.
func NewAnnouncer(cfg *config.Config, logger *slog.Logger) *Announcer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Announcer{writer: w, logger: logger}
}

// Announce publishes the batch in a single WriteMessages call.
func (a *Announcer) Announce(ctx context.Context, incidents []domain.Incident) error {
	if len(incidents) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(incidents))
	for i := range incidents {
		msg, err := serializeToMessage(incidents[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return a.writer.WriteMessages(ctx, msgs...)
}

func (a *Announcer) Close() error {
	return a.writer.Close()
}

// serializeToMessage marshals an incident, keyed by its identity so a
// compacted topic converges to one message per real-world incident.
func serializeToMessage(inc domain.Incident) (kafkago.Message, error) {
	data, err := json.Marshal(inc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize incident: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(domain.Identity(inc)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "incident_type", Value: []byte(inc.Type)},
			{Key: "first_seen", Value: []byte(inc.FirstSeen.Format(time.RFC3339))},
		},
	}, nil
}
