package main

import (
	"context"

	"go.uber.org/zap"
)

// runConsumer blocks in start. A consumer that returns before shutdown was requested has
// lost its broker connection (the delivery channel closes without an error), so the whole
// worker is stopped and left to the process supervisor to restart.
func runConsumer(ctx context.Context, queue string, start func() error, stop context.CancelFunc, log *zap.Logger) {
	err := start()
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		log.Error("Consumer failed", zap.String("queue", queue), zap.Error(err))
	} else {
		log.Error("Consumer stopped unexpectedly, shutting down worker", zap.String("queue", queue))
	}
	stop()
}
