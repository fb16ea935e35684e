package subscription

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"tasktracker/domain"
)

// Bridge routes board events through a Redis channel so every server
// instance's hub observes mutations committed by any of them. Locally
// published events reach local subscribers via the listen loop, keeping the
// order uniform across instances.
type Bridge struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  *log.Logger
}

// NewBridge creates a bridge publishing to and consuming from channel.
func NewBridge(client *redis.Client, channel string, hub *Hub, logger *log.Logger) *Bridge {
	return &Bridge{client: client, channel: channel, hub: hub, logger: logger}
}

// Publish sends ev to the shared channel. Publishing never blocks the
// mutation path; when Redis is unreachable delivery degrades to local-only
// rather than dropping the event.
func (b *Bridge) Publish(ev domain.Event) {
	data, err := sonic.Marshal(ev)
	if err != nil {
		b.logger.Errorf("marshal event: %v", err)
		return
	}
	if err := b.client.Publish(context.Background(), b.channel, data).Err(); err != nil {
		b.logger.Errorf("publish event: %v", err)
		b.hub.Publish(ev)
	}
}

// Listen consumes the shared channel and fans events into the local hub. It
// reconnects when the subscription drops and returns once ctx is done.
func (b *Bridge) Listen(ctx context.Context) {
	for {
		sub := b.client.Subscribe(ctx, b.channel)
		ch := sub.Channel()
	recv:
		for {
			select {
			case <-ctx.Done():
				sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break recv
				}
				var ev domain.Event
				if err := sonic.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.logger.Errorf("parse event: %v", err)
					continue
				}
				b.hub.Publish(ev)
			}
		}
		sub.Close()
		if ctx.Err() != nil {
			return
		}
		b.logger.Error("event channel closed, reconnecting")
		time.Sleep(time.Second)
	}
}
