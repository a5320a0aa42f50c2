package broadcast

import (
	"context"
	"log"
	"strconv"

	"emote-pack-service/internal/registry"

	"github.com/redis/go-redis/v9"
)

// RedisActivationBus relays sale activation broadcasts through a Redis
// pub/sub channel so that every node's session manager sees them, not just
// the node whose timer fired. If Redis is unavailable the bus degrades to
// the local notifier alone.
type RedisActivationBus struct {
	client  *redis.Client
	channel string
	local   registry.ActivationNotifier

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRedisActivationBus creates the bus. local receives every activation
// delivered on the channel (including this node's own publishes).
func NewRedisActivationBus(client *redis.Client, channel string, local registry.ActivationNotifier) *RedisActivationBus {
	return &RedisActivationBus{
		client:  client,
		channel: channel,
		local:   local,
	}
}

// BroadcastActivation publishes the pack id to the channel. Satisfies the
// registry's ActivationNotifier collaborator. On publish failure it falls
// back to notifying local sessions directly, so a Redis outage never
// swallows an activation on this node.
func (b *RedisActivationBus) BroadcastActivation(packID uint32) {
	ctx := context.Background()
	if err := b.client.Publish(ctx, b.channel, strconv.FormatUint(uint64(packID), 10)).Err(); err != nil {
		log.Printf("[ActivationBus] publish failed: %v, notifying local sessions only", err)
		b.local.BroadcastActivation(packID)
	}
}

// Start subscribes to the channel and fans incoming activations out to the
// local notifier until Stop is called.
func (b *RedisActivationBus) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.done = make(chan struct{})

	sub := b.client.Subscribe(ctx, b.channel)

	go func() {
		defer close(b.done)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				id, err := strconv.ParseUint(msg.Payload, 10, 32)
				if err != nil {
					log.Printf("[ActivationBus] dropping malformed activation payload %q", msg.Payload)
					continue
				}
				b.local.BroadcastActivation(uint32(id))
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Printf("[ActivationBus] subscribed to %s", b.channel)
}

// Stop tears down the subscription.
func (b *RedisActivationBus) Stop() {
	if b.cancel != nil {
		b.cancel()
		<-b.done
	}
}

// Ensure RedisActivationBus implements ActivationNotifier
var _ registry.ActivationNotifier = (*RedisActivationBus)(nil)
