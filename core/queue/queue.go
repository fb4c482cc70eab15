package queue

import (
	"context"

	"schedule-compiler/core/config"
	"schedule-compiler/core/logger"

	"github.com/hibiken/asynq"
)

// Enqueuer is the part of *asynq.Client used by producers.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func redisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewClient(cfg config.RedisConfig) *asynq.Client {
	return asynq.NewClient(redisOpt(cfg))
}

func NewServer(redisCfg config.RedisConfig, queueCfg config.QueueConfig) *asynq.Server {
	return asynq.NewServer(redisOpt(redisCfg), asynq.Config{
		Concurrency: queueCfg.Concurrency,
		Queues: map[string]int{
			queueCfg.QueueName: 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("Queue:TaskFailed", "type", task.Type(), "error", err)
		}),
	})
}
