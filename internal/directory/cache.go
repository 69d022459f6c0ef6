// Package directory は認可済みユーザーのTTL付きインメモリキャッシュを提供する。
package directory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/dayboard/internal/metrics"
	"github.com/hitoshi/dayboard/internal/model"
	"github.com/hitoshi/dayboard/internal/repository"
)

// DefaultTTL はユーザーマッピングの既定の有効期間。
const DefaultTTL = 300 * time.Second

// Cache はauth_id→AuthorizedUserのマッピングをTTL付きで保持する。
// リクエスト間で共有されるため、参照はRLock、再読込と差し替えはLockで保護する。
type Cache struct {
	repo    repository.UserRepository
	ttl     time.Duration
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time // テスト用に差し替え可能

	mu            sync.RWMutex
	users         map[string]model.AuthorizedUser
	lastRefreshed time.Time
}

// NewCache はCacheを生成する。ttlが0以下の場合はDefaultTTLを使用する。
func NewCache(repo repository.UserRepository, ttl time.Duration, logger *slog.Logger, rec metrics.Recorder) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Cache{
		repo:    repo,
		ttl:     ttl,
		logger:  logger,
		metrics: rec,
		now:     time.Now,
		users:   make(map[string]model.AuthorizedUser),
	}
}

// Load はマッピングを返す。前回の読込成功からTTL以内であれば
// ストアにアクセスせず現在のマッピングをそのまま返す。
// 期限切れの場合は同期的に再読込し、マッピングとタイムスタンプを
// アトミックに差し替える。
//
// ストア障害時は前回のマッピングを維持して返す（認可済みユーザーを
// 締め出さない）。lastRefreshedは更新しないため、次回の呼び出しで
// TTLを待たずにストアへの再読込が再試行される。
// 返されたマップは読み取り専用として扱うこと。
func (c *Cache) Load(ctx context.Context) map[string]model.AuthorizedUser {
	now := c.now()

	// フレッシュならロックを共有のまま返す
	c.mu.RLock()
	if now.Sub(c.lastRefreshed) < c.ttl {
		users := c.users
		c.mu.RUnlock()
		return users
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// ダブルチェック: 待っている間に別リクエストが再読込を終えている場合がある
	if now.Sub(c.lastRefreshed) < c.ttl {
		return c.users
	}

	list, err := c.repo.ListAuthorized(ctx)
	if err != nil {
		c.logger.Error("failed to refresh user directory, serving previous mapping",
			slog.String("error", err.Error()),
			slog.Int("cached_users", len(c.users)),
		)
		c.metrics.RecordDirectoryRefresh(metrics.OutcomeError)
		return c.users
	}

	users := make(map[string]model.AuthorizedUser, len(list))
	for _, u := range list {
		users[u.AuthID] = u
	}

	c.users = users
	c.lastRefreshed = c.now()

	c.metrics.RecordDirectoryRefresh(metrics.OutcomeSuccess)
	c.metrics.SetDirectoryUsers(len(users))
	c.logger.Info("user directory refreshed",
		slog.Int("users", len(users)),
	)

	return c.users
}

// Lookup はauth_idに対応するユーザーを返す。
// 必要に応じて内部でLoadによる再読込が行われる。
func (c *Cache) Lookup(ctx context.Context, authID string) (model.AuthorizedUser, bool) {
	users := c.Load(ctx)
	u, ok := users[authID]
	return u, ok
}

// Count は現在キャッシュされているユーザー数を返す。ヘルスレポート用。
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.users)
}
