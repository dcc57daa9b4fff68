package redis_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockpilot-api/internal/application/sensor"
	sigredis "github.com/jhoicas/stockpilot-api/internal/infrastructure/redis"
)

// Requiere STOCKPILOT_TEST_REDIS_ADDR (p. ej. localhost:6379).
func TestSignalPublisher_PublicaEnCanal(t *testing.T) {
	addr := os.Getenv("STOCKPILOT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("STOCKPILOT_TEST_REDIS_ADDR no definido")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pub, err := sigredis.NewSignalPublisher(ctx, addr, "", 0, "stockpilot:test:signals")
	require.NoError(t, err)
	defer pub.Close()

	sub := pub.Subscribe(ctx)
	defer sub.Close()
	_, err = sub.Receive(ctx) // confirmación de suscripción
	require.NoError(t, err)

	ev := sensor.SignalEvent{FlightNumber: "AM109", ProductName: "Juice", Signal: sensor.SignalRed, Reason: sensor.ReasonTimeout}
	require.NoError(t, pub.Publish(ctx, ev))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	var got sensor.SignalEvent
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, "Juice", got.ProductName)
	assert.Equal(t, sensor.SignalRed, got.Signal)
}

func TestNewSignalPublisher_SinServidor(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_, err := sigredis.NewSignalPublisher(ctx, "127.0.0.1:1", "", 0, "x")
	assert.Error(t, err)
}
