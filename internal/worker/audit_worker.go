package worker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campuskit/access-service/internal/config"
)

// AuditWorker consumes the security event stream. It is the downstream
// collaborator that owns what happens to events after emission; here it
// writes them to the audit log.
type AuditWorker struct {
	client *redis.Client
	stream string
	group  string
	name   string
	logger *zap.Logger
}

// NewAuditWorker constructs a worker bound to the configured stream.
func NewAuditWorker(client *redis.Client, cfg config.SecurityConfig, logger *zap.Logger) *AuditWorker {
	return &AuditWorker{
		client: client,
		stream: cfg.EventStream,
		group:  cfg.AuditWorkerGroup,
		name:   cfg.AuditWorkerName,
		logger: logger.Named("audit"),
	}
}

// Run consumes events until ctx is cancelled.
func (w *AuditWorker) Run(ctx context.Context) {
	if err := w.client.XGroupCreateMkStream(ctx, w.stream, w.group, "0").Err(); err != nil && !isBusyGroup(err) {
		w.logger.Warn("create consumer group", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		streams, err := w.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    w.group,
			Consumer: w.name,
			Streams:  []string{w.stream, ">"},
			Count:    32,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.Warn("read security events", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				w.logger.Info("audit event",
					zap.String("stream_id", msg.ID),
					zap.Any("event", msg.Values),
				)
				if err := w.client.XAck(ctx, w.stream, w.group, msg.ID).Err(); err != nil {
					w.logger.Warn("ack security event", zap.String("stream_id", msg.ID), zap.Error(err))
				}
			}
		}
	}
}

func isBusyGroup(err error) bool {
	return err != nil && err.Error() == "BUSYGROUP Consumer Group name already exists"
}
