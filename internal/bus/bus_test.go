package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestPublishSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := New()

	ch, err := b.Subscribe(ctx, "prices")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "prices", []byte("one")))
	assert.Equal(t, []byte("one"), recv(t, ch))
}

func TestPublishWithoutSubscribers(t *testing.T) {
	b := New()
	assert.NoError(t, b.Publish(context.Background(), "prices", []byte("dropped")))
}

func TestChannelsAreIsolated(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := New()

	prices, err := b.Subscribe(ctx, "prices")
	require.NoError(t, err)
	trades, err := b.Subscribe(ctx, "trades")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "trades", []byte("fill")))
	assert.Equal(t, []byte("fill"), recv(t, trades))

	select {
	case msg := <-prices:
		t.Fatalf("unexpected message on prices channel: %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := New()

	ch, err := b.Subscribe(ctx, "prices")
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed after cancel")
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestFanOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := New()

	a, err := b.Subscribe(ctx, "prices")
	require.NoError(t, err)
	c, err := b.Subscribe(ctx, "prices")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "prices", []byte("tick")))
	assert.Equal(t, []byte("tick"), recv(t, a))
	assert.Equal(t, []byte("tick"), recv(t, c))
}
