// Package events publishes chart change events on NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// SubjectPrefix is followed by "<kind>.<op>".
const SubjectPrefix = "medchart.chart"

// SubjectAll matches every chart event.
const SubjectAll = SubjectPrefix + ".>"

type Op string

const (
	OpCreate Op = "create"
	OpEdit   Op = "edit"
	OpDelete Op = "delete"
	OpUpdate Op = "update"
)

// ChartEvent records one successful change to a patient chart.
type ChartEvent struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Op        Op        `json:"op"`
	PatientID int64     `json:"patient_id"`
	RecordID  int64     `json:"record_id,omitempty"`
	Field     string    `json:"field,omitempty"`
	Actor     uuid.UUID `json:"actor"`
	RequestID string    `json:"request_id,omitempty"`
	At        time.Time `json:"at"`
}

func (e ChartEvent) Subject() string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, e.Kind, e.Op)
}

type Publisher interface {
	Publish(ctx context.Context, e ChartEvent) error
}

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subj string, data []byte) error
}

var _ Conn = (*nats.Conn)(nil)

type NatsPublisher struct {
	nc     Conn
	logger *slog.Logger
}

func NewNatsPublisher(nc Conn, logger *slog.Logger) *NatsPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NatsPublisher{nc: nc, logger: logger}
}

// Publish fills in the event id and time when they are unset.
func (p *NatsPublisher) Publish(ctx context.Context, e ChartEvent) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode chart event: %w", err)
	}
	if err := p.nc.Publish(e.Subject(), data); err != nil {
		return fmt.Errorf("publish %s: %w", e.Subject(), err)
	}
	p.logger.DebugContext(ctx, "chart event published", "subject", e.Subject(), "event_id", e.ID)
	return nil
}

// Nop discards events. It is used when no NATS url is configured.
type Nop struct{}

func (Nop) Publish(context.Context, ChartEvent) error { return nil }

// Decode parses a message produced by NatsPublisher.
func Decode(msg *nats.Msg) (ChartEvent, error) {
	var e ChartEvent
	if err := json.Unmarshal(msg.Data, &e); err != nil {
		return ChartEvent{}, fmt.Errorf("decode chart event %s: %w", msg.Subject, err)
	}
	return e, nil
}
