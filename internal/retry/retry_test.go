package retry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func newTestLogger() *slog.Logger {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil))
}

func TestOnEmpty_NonEmptyResultNoRetry(t *testing.T) {
	calls := 0
	result, err := OnEmpty(context.Background(), newTestLogger(), time.Millisecond, "emails",
		func(ctx context.Context) ([]string, error) {
			calls++
			return []string{"a"}, nil
		})
	if err != nil {
		t.Fatalf("エラーを返した: %v", err)
	}
	if calls != 1 {
		t.Errorf("呼び出し回数 = %d, want 1 (非空なら再試行しない)", calls)
	}
	if len(result) != 1 || result[0] != "a" {
		t.Errorf("result = %v, want [a]", result)
	}
}

func TestOnEmpty_ErrorNoRetry(t *testing.T) {
	calls := 0
	wantErr := errors.New("boom")
	_, err := OnEmpty(context.Background(), newTestLogger(), time.Millisecond, "emails",
		func(ctx context.Context) ([]string, error) {
			calls++
			return nil, wantErr
		})
	if !errors.Is(err, wantErr) {
		t.Fatalf("エラーがそのまま返されるべき: %v", err)
	}
	if calls != 1 {
		t.Errorf("呼び出し回数 = %d, want 1 (エラーは再試行しない)", calls)
	}
}

func TestOnEmpty_EmptyRetriesExactlyOnce(t *testing.T) {
	delay := 50 * time.Millisecond
	calls := 0
	started := time.Now()

	result, err := OnEmpty(context.Background(), newTestLogger(), delay, "events",
		func(ctx context.Context) ([]int, error) {
			calls++
			if calls == 1 {
				return []int{}, nil
			}
			return []int{7}, nil
		})
	if err != nil {
		t.Fatalf("エラーを返した: %v", err)
	}
	if calls != 2 {
		t.Fatalf("呼び出し回数 = %d, want 2 (空なら1回だけ再試行)", calls)
	}
	// 再試行の結果が返される
	if len(result) != 1 || result[0] != 7 {
		t.Errorf("result = %v, want [7]", result)
	}
	if elapsed := time.Since(started); elapsed < delay {
		t.Errorf("再試行前に%v待機するべき: elapsed=%v", delay, elapsed)
	}
}

func TestOnEmpty_SecondEmptyReturnedAsIs(t *testing.T) {
	calls := 0
	result, err := OnEmpty(context.Background(), newTestLogger(), time.Millisecond, "events",
		func(ctx context.Context) ([]int, error) {
			calls++
			return []int{}, nil
		})
	if err != nil {
		t.Fatalf("エラーを返した: %v", err)
	}
	if calls != 2 {
		t.Errorf("呼び出し回数 = %d, want 2 (再試行は1回だけ)", calls)
	}
	if len(result) != 0 {
		t.Errorf("result = %v, want empty", result)
	}
}

func TestOnEmpty_ContextCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	result, err := OnEmpty(ctx, newTestLogger(), 10*time.Second, "events",
		func(ctx context.Context) ([]int, error) {
			calls++
			return []int{}, nil
		})
	if err != nil {
		t.Fatalf("キャンセル時は初回の結果を返す設計: %v", err)
	}
	if calls != 1 {
		t.Errorf("呼び出し回数 = %d, want 1 (キャンセルされたら再試行しない)", calls)
	}
	if len(result) != 0 {
		t.Errorf("result = %v, want empty", result)
	}
}
