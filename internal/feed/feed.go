// Package feed fans internal notifications out to connected staff browsers.
package feed

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/yoockh/recruitportal/internal/models"
)

const DefaultChannel = "notifications:feed"

// Publisher announces a freshly stored notification.
type Publisher interface {
	Publish(ctx context.Context, n models.Notification) error
}

// Event is the payload written to subscribers.
type Event struct {
	Type         string              `json:"type"`
	Notification models.Notification `json:"notification"`
}

type RedisFeed struct {
	rdb     *redis.Client
	channel string
}

func NewRedisFeed(rdb *redis.Client, channel string) *RedisFeed {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisFeed{rdb: rdb, channel: channel}
}

func (f *RedisFeed) Channel() string { return f.channel }

func (f *RedisFeed) Publish(ctx context.Context, n models.Notification) error {
	b, err := Encode(n)
	if err != nil {
		return err
	}
	return f.rdb.Publish(ctx, f.channel, b).Err()
}

// Subscribe returns a pub/sub handle; the caller must Close it.
func (f *RedisFeed) Subscribe(ctx context.Context) *redis.PubSub {
	return f.rdb.Subscribe(ctx, f.channel)
}

func Encode(n models.Notification) ([]byte, error) {
	return json.Marshal(Event{Type: "notification", Notification: n})
}
