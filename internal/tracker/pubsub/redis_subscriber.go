package pubsub

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Broadcaster recebe payloads já serializados (o ws.Hub)
type Broadcaster interface {
	Broadcast(msg []byte)
}

// StartRedisSubscriber escuta o canal Redis Pub/Sub e repassa cada mensagem,
// sem decodificar, para todos os clientes WebSocket do hub
func StartRedisSubscriber(ctx context.Context, log *zap.Logger, r *redis.Client, channel string, hub Broadcaster) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	log.Info("redis subscriber started", zap.String("channel", channel))

	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					log.Warn("redis subscription closed", zap.String("channel", channel))
					return
				}
				if msg == nil {
					continue
				}
				hub.Broadcast([]byte(msg.Payload))
			}
		}
	}()
}
