package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config holds configuration for change notifications.
type Config struct {
	// RedisAddr is the host:port of the Redis server. Notifications are disabled when empty.
	RedisAddr string `mapstructure:"redis_addr" default:""`
	// RedisPassword is the Redis password.
	RedisPassword string `mapstructure:"redis_password" default:""`
	// RedisDB is the Redis database number.
	RedisDB int `mapstructure:"redis_db" default:"0"`
	// ChannelPrefix prefixes every channel name.
	ChannelPrefix string `mapstructure:"channel_prefix" default:"shared-save"`
}

type publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisNotifier publishes events over Redis pub/sub.
type RedisNotifier struct {
	client *redis.Client
	pub    publisher
	prefix string
	logger *zap.Logger
}

// New returns a RedisNotifier when cfg names a Redis server and Nop otherwise.
// It pings the server so a wrong address is reported up front.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Notifier, error) {
	if cfg.RedisAddr == "" {
		return Nop{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	return &RedisNotifier{client: client, pub: client, prefix: cfg.ChannelPrefix, logger: logger}, nil
}

// Notify implements Notifier.
func (n *RedisNotifier) Notify(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	channel := Channel(n.prefix, event.WorldID)
	receivers, err := n.pub.Publish(ctx, channel, payload).Result()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}

	n.logger.Debug("Change summary published", zap.String("channel", channel), zap.Int64("receivers", receivers))
	return nil
}

// Watch calls fn for every event published for worldID until ctx is done.
// Messages that are not events are logged and skipped.
func (n *RedisNotifier) Watch(ctx context.Context, worldID string, fn func(Event)) error {
	channel := Channel(n.prefix, worldID)
	pubsub := n.client.Subscribe(ctx, channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", channel, err)
	}

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			event, err := DecodeEvent(msg.Payload)
			if err != nil {
				n.logger.Warn("Ignoring malformed event", zap.String("channel", channel), zap.Error(err))
				continue
			}
			fn(event)
		}
	}
}

// Close implements Notifier.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
