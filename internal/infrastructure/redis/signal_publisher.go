package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stockpilot-api/internal/application/sensor"
)

var _ sensor.SignalPublisher = (*SignalPublisher)(nil)

// SignalPublisher publica los avisos de señal roja en un canal Redis (JSON).
type SignalPublisher struct {
	client  *redis.Client
	channel string
}

// NewSignalPublisher conecta y verifica con PING.
func NewSignalPublisher(ctx context.Context, addr, password string, db int, channel string) (*SignalPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &SignalPublisher{client: client, channel: channel}, nil
}

// Publish serializa el evento y lo publica en el canal configurado.
func (p *SignalPublisher) Publish(ctx context.Context, ev sensor.SignalEvent) error {
	msg, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal signal event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, msg).Err(); err != nil {
		return fmt.Errorf("failed to publish signal event: %w", err)
	}
	return nil
}

// Subscribe se suscribe al canal de señales (consumidores y pruebas).
func (p *SignalPublisher) Subscribe(ctx context.Context) *redis.PubSub {
	return p.client.Subscribe(ctx, p.channel)
}

// Close cierra la conexión.
func (p *SignalPublisher) Close() error {
	return p.client.Close()
}
