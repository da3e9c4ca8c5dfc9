package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeDelivery struct {
	acks    int
	nacks   int
	requeue bool
}

func (d *fakeDelivery) Ack(bool) error {
	d.acks++
	return nil
}

func (d *fakeDelivery) Nack(_, requeue bool) error {
	d.nacks++
	d.requeue = requeue
	return nil
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name        string
		handlerErr  error
		wantAcks    int
		wantNacks   int
		wantRequeue bool
	}{
		{name: "success is acked", wantAcks: 1},
		{name: "transient error is requeued", handlerErr: errors.New("smtp down"), wantNacks: 1, wantRequeue: true},
		{name: "permanent error is dropped", handlerErr: fmt.Errorf("decode: %w: bad json", ErrPermanent), wantNacks: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDelivery{}
			var got []byte
			process(context.Background(), newNoopLogger(), d, []byte("{"), func(_ context.Context, body []byte) error {
				got = body
				return tt.handlerErr
			})

			assert.Equal(t, []byte("{"), got)
			assert.Equal(t, tt.wantAcks, d.acks)
			assert.Equal(t, tt.wantNacks, d.nacks)
			assert.Equal(t, tt.wantRequeue, d.requeue)
		})
	}
}

func TestConsumerMessage_HandleMessages(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	uri := amqpURI(ctx, t)

	conn, err := Connect(uri, 3, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	queueName := "consumer-test"
	_, err = ch.QueueDeclare(queueName, false, false, false, false, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	received := make([]string, 0)
	var mu sync.Mutex

	handler := func(_ context.Context, body []byte) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, string(body))
		wg.Done()
		return nil
	}
	require.NoError(t, ConsumerMessage(ctx, newNoopLogger(), ch, queueName, handler))

	for _, msg := range []string{"hello", "world"} {
		err := ch.Publish("", queueName, false, false, amqp.Publishing{
			ContentType: "text/plain",
			Body:        []byte(msg),
		})
		require.NoError(t, err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Timeout waiting for messages to be processed")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"hello", "world"}, received)
}

func TestConsumerMessage_HandlerErrorTriggersNack(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	uri := amqpURI(ctx, t)

	conn, err := Connect(uri, 3, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	consumerCh, err := conn.Channel()
	require.NoError(t, err)
	defer consumerCh.Close()

	queueName := "nack-test"
	_, err = consumerCh.QueueDeclare(queueName, false, false, false, false, nil)
	require.NoError(t, err)

	var attempts int
	var mu sync.Mutex
	redelivered := make(chan struct{})
	handler := func(_ context.Context, _ []byte) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 2 {
			close(redelivered)
			return nil
		}
		return fmt.Errorf("fail")
	}
	require.NoError(t, ConsumerMessage(ctx, newNoopLogger(), consumerCh, queueName, handler))

	err = consumerCh.Publish("", queueName, false, false, amqp.Publishing{Body: []byte("bad")})
	require.NoError(t, err)

	select {
	case <-redelivered:
	case <-time.After(10 * time.Second):
		t.Fatal("Did not receive requeued message after Nack")
	}
}
