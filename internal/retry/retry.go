// Package retry は「成功したが空」の上流応答に対する単発リトライを提供する。
package retry

import (
	"context"
	"log/slog"
	"time"
)

// DefaultDelay は再試行までの既定の待機時間。
const DefaultDelay = 2 * time.Second

// OnEmpty はfnを実行し、エラーなく空の結果が返った場合に限り、
// delay待機後にもう一度だけ実行してその結果を返す。
// エラーや非空の結果は再試行しない。待機はctxのキャンセルで打ち切られ、
// その場合は初回の結果を返す。
func OnEmpty[T any](ctx context.Context, logger *slog.Logger, delay time.Duration, operation string, fn func(context.Context) ([]T, error)) ([]T, error) {
	result, err := fn(ctx)
	if err != nil || len(result) > 0 {
		return result, err
	}

	logger.Info("empty result, retrying once",
		slog.String("operation", operation),
		slog.Duration("delay", delay),
	)

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return result, nil
	case <-timer.C:
	}

	// 再試行の結果は空でもエラーでもそのまま返す
	return fn(ctx)
}
