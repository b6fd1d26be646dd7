package workers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	DefaultEmailStream = "email:stream"
	DefaultEmailGroup  = "email-workers"
)

// RedisPublisher queues outbox ids on the email stream.
type RedisPublisher struct {
	Redis  *redis.Client
	Stream string
	MaxLen int64
}

func (p *RedisPublisher) Publish(ctx context.Context, outboxID string) error {
	stream := p.Stream
	if stream == "" {
		stream = DefaultEmailStream
	}
	maxLen := p.MaxLen
	if maxLen <= 0 {
		maxLen = 10000
	}
	return p.Redis.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: maxLen,
		Approx: true,
		Values: map[string]any{"outbox_id": outboxID},
	}).Err()
}

// EmailWorkerPool consumes the email stream with a consumer group and runs a
// periodic sweep for retries.
type EmailWorkerPool struct {
	Redis      *redis.Client
	Dispatcher *Dispatcher
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
	SweepInterval  time.Duration
}

func (p *EmailWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Dispatcher == nil {
		return errors.New("EmailWorkerPool missing dependency: Redis/Dispatcher must be set")
	}
	if p.Stream == "" {
		p.Stream = DefaultEmailStream
	}
	if p.Group == "" {
		p.Group = DefaultEmailGroup
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 3
	}
	if p.SweepInterval <= 0 {
		p.SweepInterval = 30 * time.Second
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	go p.runSweeper(ctx)
	return nil
}

func (p *EmailWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			p.Logger.WithError(err).WithField("consumer", consumer).Warn("email stream read failed")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *EmailWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	id, _ := msg.Values["outbox_id"].(string)
	if id == "" {
		p.Logger.WithField("redis_id", msg.ID).Warn("email stream message without outbox_id")
		return
	}
	// failures are recorded on the row; the sweeper owns retries
	_ = p.Dispatcher.Deliver(ctx, id)
}

func (p *EmailWorkerPool) runSweeper(ctx context.Context) {
	t := time.NewTicker(p.SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := p.Dispatcher.Sweep(ctx, 100); n > 0 {
				p.Logger.WithField("rows", n).Debug("outbox sweep")
			}
		}
	}
}
