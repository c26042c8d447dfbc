package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	subject string
	data    []byte
	err     error
}

func (r *recorder) Publish(subj string, data []byte) error {
	r.subject, r.data = subj, data
	return r.err
}

func TestPublishEncodesEvent(t *testing.T) {
	rec := &recorder{}
	actor := uuid.New()

	err := NewNatsPublisher(rec, nil).Publish(context.Background(), ChartEvent{
		Kind: "allergies", Op: OpCreate, PatientID: 4, RecordID: 9, Actor: actor,
	})
	require.NoError(t, err)
	assert.Equal(t, "medchart.chart.allergies.create", rec.subject)

	e, err := Decode(&nats.Msg{Subject: rec.subject, Data: rec.data})
	require.NoError(t, err)
	assert.Equal(t, int64(4), e.PatientID)
	assert.Equal(t, int64(9), e.RecordID)
	assert.Equal(t, actor, e.Actor)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.False(t, e.At.IsZero())
}

func TestPublishError(t *testing.T) {
	rec := &recorder{err: errors.New("connection closed")}
	err := NewNatsPublisher(rec, nil).Publish(context.Background(), ChartEvent{Kind: "diet", Op: OpDelete})
	assert.ErrorContains(t, err, "medchart.chart.diet.delete")
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode(&nats.Msg{Subject: "medchart.chart.x.y", Data: []byte("{")})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), ChartEvent{}))
}
