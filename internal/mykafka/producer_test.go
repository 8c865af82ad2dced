package mykafka

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	t.Parallel()
	_, err := NewProducer(nil)
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	t.Parallel()

	msg, err := encode(TopicOrderEvents, "42", map[string]any{"type": "order_created", "pedido_id": 42})
	require.NoError(t, err)
	assert.Equal(t, TopicOrderEvents, msg.Topic)
	assert.Equal(t, []byte("42"), msg.Key)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "order_created", got["type"])

	_, err = encode(TopicOrderEvents, "k", make(chan int))
	assert.Error(t, err)
}

func TestPublishEventIntegration(t *testing.T) {
	brokers := os.Getenv("KAFKA_TEST_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_TEST_BROKERS not set")
	}
	list := strings.Split(brokers, ",")

	p, err := NewProducer(list)
	require.NoError(t, err)
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	require.NoError(t, p.PublishEvent(ctx, TopicUserEvents, "it", map[string]string{"type": "ping"}))
}
