// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// CodeはHTTPレスポンスの"error"フィールドとしてそのまま返される機械可読コード。
type APIError struct {
	Code    string // エラーコード
	Message string // エラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeMissingCredential = "missing_credential"
	ErrCodeInvalidCredential = "invalid_credential"
	ErrCodeNotConfigured     = "not_configured"
	ErrCodeInvalidInput      = "invalid_input"
	ErrCodeUpstreamFailure   = "upstream_failure"
)

// NewMissingCredentialError は認証ヘッダー欠落エラーを生成する。
func NewMissingCredentialError() *APIError {
	return &APIError{
		Code:    ErrCodeMissingCredential,
		Message: "missing credential: X-API-Key header is required",
	}
}

// NewInvalidCredentialError は無効な認証情報エラーを生成する。
func NewInvalidCredentialError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidCredential,
		Message: "invalid credential",
	}
}

// NewNotConfiguredError は連携サービスが未設定であることを表すエラーを生成する。
// 設定不足は機能の縮退であり、プロセス致命傷にはしない。
func NewNotConfiguredError(service string) *APIError {
	return &APIError{
		Code:    ErrCodeNotConfigured,
		Message: fmt.Sprintf("%s is not configured", service),
	}
}

// NewInvalidInputError は入力バリデーションエラーを生成する。
// Messageは400レスポンスの"error"フィールドとしてそのまま返される。
func NewInvalidInputError(description string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidInput,
		Message: description,
	}
}

// NewUpstreamFailureError は下流サービス呼び出しの失敗を表すエラーを生成する。
// 読み取り系アダプタでは失敗は空結果に吸収されるため、
// このエラーを返すのは書き込み系（予定作成）のみ。
func NewUpstreamFailureError(description string) *APIError {
	return &APIError{
		Code:    ErrCodeUpstreamFailure,
		Message: description,
	}
}
