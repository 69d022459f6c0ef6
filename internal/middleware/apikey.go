package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/hitoshi/dayboard/internal/model"
)

// Authenticator はAPIキー認証を行う依存のインターフェース。
type Authenticator interface {
	Authenticate(ctx context.Context, header http.Header) (*model.AuthorizedUser, *model.APIError)
}

// contextKey はコンテキストキーの衝突を避けるための非公開型。
type contextKey string

const userContextKey contextKey = "authorized_user"

// ErrUserNotInContext は認証済みユーザーがコンテキストに存在しないことを示す。
var ErrUserNotInContext = errors.New("authorized user not found in context")

// UserFromContext はコンテキストから認証済みユーザーを取得する。
func UserFromContext(ctx context.Context) (*model.AuthorizedUser, error) {
	user, ok := ctx.Value(userContextKey).(*model.AuthorizedUser)
	if !ok || user == nil {
		return nil, ErrUserNotInContext
	}
	return user, nil
}

// ContextWithUser は認証済みユーザーをコンテキストに格納する。テスト用にも公開する。
func ContextWithUser(ctx context.Context, user *model.AuthorizedUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// NewAPIKeyMiddleware はリクエストヘッダのAPIキーを検証し、
// 解決したユーザーをコンテキストに載せて後続へ渡すミドルウェアを返す。
// 認証失敗は401でリクエストを打ち切る。
func NewAPIKeyMiddleware(authenticator Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, apiErr := authenticator.Authenticate(r.Context(), r.Header)
			if apiErr != nil {
				WriteErrorResponse(w, StatusForError(apiErr), apiErr)
				return
			}

			ctx := ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
