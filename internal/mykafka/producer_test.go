package mykafka

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilProducer_IsNoop(t *testing.T) {
	t.Parallel()

	p := NewProducer(nil, "order_events")
	require.Nil(t, p)
	require.NoError(t, p.PublishEvent(context.Background(), "k", "order_created", map[string]any{"id": "1"}))
	require.NoError(t, p.Close())
}

func TestProducer_PublishEvent_Integration(t *testing.T) {
	broker := os.Getenv("KAFKA_TEST_BROKER")
	if broker == "" {
		t.Skip("KAFKA_TEST_BROKER is required for tests")
	}

	topic := "order_events_" + uuid.NewString()
	p := NewProducer([]string{broker}, topic)
	t.Cleanup(func() { _ = p.Close() })

	require.NoError(t, p.PublishEvent(context.Background(), "order-1", "order_created", map[string]any{"id": "order-1"}))

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
		MaxWait:   time.Second,
	})
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	m, err := r.ReadMessage(ctx)
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(m.Value, &ev))
	assert.Equal(t, "order_created", ev.Type)
	assert.Equal(t, "order-1", string(m.Key))
}
