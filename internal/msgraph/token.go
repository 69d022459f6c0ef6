// Package msgraph はMicrosoft Graph APIとの連携を提供する。
// クライアントクレデンシャルによるアプリ専用トークンの取得・キャッシュと、
// メール・カレンダーの読み取りアダプタを含む。
package msgraph

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	// defaultAuthority はMicrosoft IDプラットフォームのトークン発行基盤。
	defaultAuthority = "https://login.microsoftonline.com"
	// graphScope はアプリ専用アクセスのスコープ。
	graphScope = "https://graph.microsoft.com/.default"
	// tokenSafetyMargin はトークン失効前に先行更新するための安全マージン。
	tokenSafetyMargin = 300 * time.Second
)

// TokenCacheConfig はトークン取得に必要な資格情報を保持する。
type TokenCacheConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	// Authority は省略時defaultAuthority。テスト用に差し替え可能。
	Authority string
}

// TokenCache は単一のBearerトークンとその失効時刻を保持する。
// リクエスト間で共有されるためミューテックスで保護する。
// 資格情報が不足している場合は「未設定」として全呼び出しでトークンなしを返す。
type TokenCache struct {
	conf       *clientcredentials.Config // nilなら未設定
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time // テスト用に差し替え可能

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
	configured  bool
}

// NewTokenCache はTokenCacheを生成する。
// tenant/client/secretのいずれかが欠けている場合はトークン取得を行わない
// 「未設定」状態のキャッシュを返す。呼び出し側はトークンなしを
// 「機能利用不可」として扱い、リトライ対象にしてはならない。
func NewTokenCache(cfg TokenCacheConfig, httpClient *http.Client, logger *slog.Logger) *TokenCache {
	t := &TokenCache{
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}

	if cfg.TenantID == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		logger.Info("microsoft graph credentials are not configured")
		return t
	}

	authority := cfg.Authority
	if authority == "" {
		authority = defaultAuthority
	}

	t.conf = &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", authority, cfg.TenantID),
		Scopes:       []string{graphScope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	t.configured = true

	return t
}

// Token は有効なアクセストークンを返す。
// キャッシュ済みトークンが未失効ならネットワークアクセスなしで返す。
// 失効済みまたは未取得なら同期的にクライアントクレデンシャルで取得する。
// 取得失敗時はconfiguredフラグを落としてトークンなしを返す。
// この層ではリトライしない（リトライは呼び出し側の責務）。
func (t *TokenCache) Token(ctx context.Context) (string, bool) {
	if t.conf == nil {
		return "", false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.accessToken != "" && t.now().Before(t.expiresAt) {
		return t.accessToken, true
	}

	if t.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, t.httpClient)
	}

	tok, err := t.conf.Token(ctx)
	if err != nil {
		t.logger.Error("failed to acquire microsoft graph token",
			slog.String("error", err.Error()),
		)
		t.configured = false
		return "", false
	}

	t.accessToken = tok.AccessToken
	if tok.Expiry.IsZero() {
		// プロバイダが有効期間を返さない場合の保守的な既定値
		t.expiresAt = t.now().Add(30 * time.Minute)
	} else {
		t.expiresAt = tok.Expiry.Add(-tokenSafetyMargin)
	}
	t.configured = true

	t.logger.Info("microsoft graph token acquired",
		slog.Time("expires_at", t.expiresAt),
	)

	return t.accessToken, true
}

// Configured は直近の取得試行の結果に基づく設定状態を返す。ヘルスレポート用。
func (t *TokenCache) Configured() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.configured
}
