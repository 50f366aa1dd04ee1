package feed

import (
	"context"
	"debug_contest/internal/domain/model"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// RedisTeamFeed carries team score updates over a Redis pub/sub channel.
// Publishing is fire-and-forget after the owning transaction commits; a
// dropped message only delays the leaderboard until the next reseed.
type RedisTeamFeed struct {
	rdb     *redis.Client
	channel string
}

func NewRedisTeamFeed(rdb *redis.Client, channel string) *RedisTeamFeed {
	return &RedisTeamFeed{rdb: rdb, channel: channel}
}

func (f *RedisTeamFeed) Publish(ctx context.Context, update model.TeamScoreUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("RedisTeamFeed.Publish marshal: %w", err)
	}
	if err := f.rdb.Publish(ctx, f.channel, payload).Err(); err != nil {
		return fmt.Errorf("RedisTeamFeed.Publish: %w", err)
	}
	return nil
}

// Subscribe returns a channel of decoded updates. The channel closes when ctx
// is cancelled.
func (f *RedisTeamFeed) Subscribe(ctx context.Context) (<-chan model.TeamScoreUpdate, error) {
	pubsub := f.rdb.Subscribe(ctx, f.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("RedisTeamFeed.Subscribe: %w", err)
	}

	updates := make(chan model.TeamScoreUpdate)
	go func() {
		defer close(updates)
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				var update model.TeamScoreUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
					log.Printf("WARN: Dropping malformed team feed message: %v", err)
					continue
				}
				select {
				case updates <- update:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return updates, nil
}
