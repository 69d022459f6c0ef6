// Package auth はAPIキーによる認証を提供する。
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/dayboard/internal/metrics"
	"github.com/hitoshi/dayboard/internal/model"
)

// CredentialHeader は認証情報を運ぶヘッダーの正規名。
const CredentialHeader = "X-API-Key"

// UserDirectory は認証に必要なユーザー検索のインターフェース。
// directory.Cacheの部分集合として定義する。
type UserDirectory interface {
	Lookup(ctx context.Context, authID string) (model.AuthorizedUser, bool)
}

// Authenticator はリクエストヘッダーの認証情報をユーザーに解決する。
// 保護対象の全エンドポイントで唯一の認可ゲートとなる。
type Authenticator struct {
	directory UserDirectory
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// NewAuthenticator はAuthenticatorを生成する。
func NewAuthenticator(dir UserDirectory, logger *slog.Logger, rec metrics.Recorder) *Authenticator {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Authenticator{
		directory: dir,
		logger:    logger,
		metrics:   rec,
	}
}

// Authenticate はヘッダーから認証情報を取り出し、ユーザーディレクトリで
// 解決する。失敗時は401相当のAPIErrorを返す。
// ヘッダー名の大文字小文字は区別しない。
func (a *Authenticator) Authenticate(ctx context.Context, header http.Header) (*model.AuthorizedUser, *model.APIError) {
	credential := extractCredential(header)
	if credential == "" {
		a.metrics.RecordAuthFailure("missing_credential")
		return nil, model.NewMissingCredentialError()
	}

	user, ok := a.directory.Lookup(ctx, credential)
	if !ok {
		a.logger.Warn("authentication failed: unknown credential")
		a.metrics.RecordAuthFailure("invalid_credential")
		return nil, model.NewInvalidCredentialError()
	}

	return &user, nil
}

// extractCredential はヘッダーから認証情報を取り出す。
// http.Header.Getはパース済みリクエストでは正規化されたキーで動作するが、
// テスト等でマップへ直接設定された非正規キーも受理できるよう、
// 見つからない場合は大文字小文字を無視した全キー走査にフォールバックする。
func extractCredential(header http.Header) string {
	if v := header.Get(CredentialHeader); v != "" {
		return v
	}
	for k, vs := range header {
		if strings.EqualFold(k, CredentialHeader) && len(vs) > 0 && vs[0] != "" {
			return vs[0]
		}
	}
	return ""
}
