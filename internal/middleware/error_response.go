// Package middleware はHTTPミドルウェアとエラーレスポンスの共通処理を提供する。
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/dayboard/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// errorには機械可読なエラーコード、messageには人間可読な説明が入る。
type ErrorResponseBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Error:   apiErr.Code,
		Message: apiErr.Message,
	})
}

// WriteValidationError は入力検証エラーの400レスポンスを書き込む。
// このフォーマットのみ、errorフィールドに説明文をそのまま入れる。
func WriteValidationError(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{
		"error": description,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:    "internal_error",
		Message: "An internal error occurred. Please try again later.",
	})
}

// StatusForError はAPIエラーコードをHTTPステータスコードに対応付ける。
func StatusForError(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeMissingCredential, model.ErrCodeInvalidCredential:
		return http.StatusUnauthorized
	case model.ErrCodeNotConfigured:
		return http.StatusServiceUnavailable
	case model.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case model.ErrCodeUpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
