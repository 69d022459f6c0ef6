// Package repository はデータストアへのアクセスを抽象化する。
package repository

import (
	"context"

	"github.com/hitoshi/dayboard/internal/model"
)

// UserRepository は認可済みユーザーの読み取りインターフェース。
// user_detailsテーブルは外部システムが管理し、本システムからは読み取り専用。
type UserRepository interface {
	// ListAuthorized は認可フラグが有効な全ユーザーを返す。
	// auth_idまたはemailがNULLの行は対象外。
	ListAuthorized(ctx context.Context) ([]model.AuthorizedUser, error)
}
