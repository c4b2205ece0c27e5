package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"example.com/octofit/internal/events"
)

// AggregateUser is the aggregate type of user events.
const AggregateUser = "user"

// Recorder stores events for later delivery.
type Recorder interface {
	RecordUserUpdated(ctx context.Context, evt events.UserUpdated) error
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRecorder inserts events into the outbox table.
type PostgresRecorder struct {
	db    execer
	topic string
	now   func() time.Time
}

// NewPostgresRecorder builds a recorder writing to db for the given Kafka topic.
// db is usually a *pgxpool.Pool.
func NewPostgresRecorder(db execer, topic string) *PostgresRecorder {
	return &PostgresRecorder{db: db, topic: topic, now: time.Now}
}

// RecordUserUpdated fills in the event id and timestamp when missing and
// stores the event.
func (r *PostgresRecorder) RecordUserUpdated(ctx context.Context, evt events.UserUpdated) error {
	if evt.EventID == "" {
		evt.EventID = uuid.NewString()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = r.now().UTC()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", events.UserUpdatedType, err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO outbox (event_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		evt.EventID,
		AggregateUser,
		evt.UserID,
		events.UserUpdatedType,
		r.topic,
		SchemaSubject(r.topic),
		evt.UserID,
		payload,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	recordedCounter.WithLabelValues(events.UserUpdatedType).Inc()
	return nil
}

// SchemaSubject is the registry subject for values published to topic.
func SchemaSubject(topic string) string {
	return topic + "-value"
}

// NoopRecorder drops every event. It is used when no database is configured.
type NoopRecorder struct{}

// RecordUserUpdated does nothing.
func (NoopRecorder) RecordUserUpdated(context.Context, events.UserUpdated) error { return nil }
