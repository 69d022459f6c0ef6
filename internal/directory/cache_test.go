package directory

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/dayboard/internal/model"
)

// fakeUserRepo は呼び出し回数を記録するUserRepositoryのフェイク。
type fakeUserRepo struct {
	mu    sync.Mutex
	calls int
	users []model.AuthorizedUser
	err   error
}

func (f *fakeUserRepo) ListAuthorized(ctx context.Context) ([]model.AuthorizedUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

func (f *fakeUserRepo) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestLogger() *slog.Logger {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil))
}

func TestCache_Load_FreshWithinTTL_NoStoreQuery(t *testing.T) {
	repo := &fakeUserRepo{
		users: []model.AuthorizedUser{
			{AuthID: "key-1", Email: "alice@example.com", Name: "Alice"},
		},
	}
	c := NewCache(repo, 300*time.Second, newTestLogger(), nil)

	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	users := c.Load(context.Background())
	if len(users) != 1 {
		t.Fatalf("ユーザー数 = %d, want 1", len(users))
	}

	// TTL内の2回目: ストアアクセスなし
	current = current.Add(100 * time.Second)
	c.Load(context.Background())

	if repo.callCount() != 1 {
		t.Errorf("TTL内の2回のLoadでストアクエリ数 = %d, want 1", repo.callCount())
	}
}

func TestCache_Load_StaleAfterTTL_Reloads(t *testing.T) {
	repo := &fakeUserRepo{
		users: []model.AuthorizedUser{
			{AuthID: "key-1", Email: "alice@example.com", Name: "Alice"},
		},
	}
	c := NewCache(repo, 300*time.Second, newTestLogger(), nil)

	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.Load(context.Background())

	// TTLを超えたら再読込される
	current = current.Add(301 * time.Second)
	c.Load(context.Background())

	if repo.callCount() != 2 {
		t.Errorf("TTL超過後のストアクエリ数 = %d, want 2", repo.callCount())
	}
}

func TestCache_Load_MappingReplacedWholesale(t *testing.T) {
	repo := &fakeUserRepo{
		users: []model.AuthorizedUser{
			{AuthID: "key-1", Email: "alice@example.com"},
			{AuthID: "key-2", Email: "bob@example.com"},
		},
	}
	c := NewCache(repo, 300*time.Second, newTestLogger(), nil)

	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.Load(context.Background())
	if c.Count() != 2 {
		t.Fatalf("ユーザー数 = %d, want 2", c.Count())
	}

	// ストアから消えたユーザーは次回の再読込で消える（部分更新なし）
	repo.mu.Lock()
	repo.users = []model.AuthorizedUser{
		{AuthID: "key-2", Email: "bob@example.com"},
	}
	repo.mu.Unlock()

	current = current.Add(301 * time.Second)
	users := c.Load(context.Background())

	if _, ok := users["key-1"]; ok {
		t.Error("ストアから削除されたユーザーがマッピングに残っている")
	}
	if c.Count() != 1 {
		t.Errorf("ユーザー数 = %d, want 1", c.Count())
	}
}

func TestCache_Load_StoreFailure_KeepsPreviousAndRetries(t *testing.T) {
	repo := &fakeUserRepo{
		users: []model.AuthorizedUser{
			{AuthID: "key-1", Email: "alice@example.com"},
		},
	}
	c := NewCache(repo, 300*time.Second, newTestLogger(), nil)

	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.Load(context.Background())

	// ストアが落ちた状態でTTL切れ
	repo.mu.Lock()
	repo.err = errors.New("connection refused")
	repo.mu.Unlock()

	current = current.Add(301 * time.Second)
	users := c.Load(context.Background())

	// 前回のマッピングを維持する（フェイルオープン）
	if _, ok := users["key-1"]; !ok {
		t.Error("ストア障害時に前回のマッピングが維持されるべき")
	}

	// lastRefreshedが更新されないため、直後の呼び出しでもストアへ再試行する
	before := repo.callCount()
	c.Load(context.Background())
	if repo.callCount() != before+1 {
		t.Errorf("障害後の呼び出しでストアへ再試行されるべき: calls = %d, want %d", repo.callCount(), before+1)
	}
}

func TestCache_Lookup_HitAndMiss(t *testing.T) {
	repo := &fakeUserRepo{
		users: []model.AuthorizedUser{
			{AuthID: "key-1", Email: "alice@example.com", Name: "Alice"},
		},
	}
	c := NewCache(repo, 300*time.Second, newTestLogger(), nil)

	u, ok := c.Lookup(context.Background(), "key-1")
	if !ok {
		t.Fatal("既知のauth_idでLookupが失敗した")
	}
	if u.Email != "alice@example.com" {
		t.Errorf("Email = %s, want alice@example.com", u.Email)
	}

	if _, ok := c.Lookup(context.Background(), "unknown"); ok {
		t.Error("未知のauth_idでLookupが成功してはならない")
	}
}

func TestCache_Load_ConcurrentRefreshOnce(t *testing.T) {
	repo := &fakeUserRepo{
		users: []model.AuthorizedUser{
			{AuthID: "key-1", Email: "alice@example.com"},
		},
	}
	c := NewCache(repo, 300*time.Second, newTestLogger(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Load(context.Background())
		}()
	}
	wg.Wait()

	// 同時にstaleを観測した複数リクエストが冗長な再読込を重ねないこと
	if repo.callCount() != 1 {
		t.Errorf("並行Loadでのストアクエリ数 = %d, want 1", repo.callCount())
	}
}
