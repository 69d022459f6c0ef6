package handler

import (
	"net/http"

	"github.com/hitoshi/dayboard/internal/middleware"
	"github.com/hitoshi/dayboard/internal/model"
)

// AuthHandler は認証確認エンドポイントのHTTPハンドラー。
type AuthHandler struct{}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// authTestResponse は認証確認のレスポンス。
type authTestResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          authTestUser `json:"user"`
}

type authTestUser struct {
	AuthID string `json:"auth_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// AuthTest はAPIキーで解決された自身の情報を返す。
// GET /auth-test
func (h *AuthHandler) AuthTest(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewMissingCredentialError())
		return
	}

	writeJSON(w, http.StatusOK, authTestResponse{
		Authenticated: true,
		User: authTestUser{
			AuthID: user.AuthID,
			Email:  user.Email,
			Name:   user.Name,
		},
	})
}
