// Package model はドメインモデルを定義する。
package model

// AuthorizedUser はダッシュボードの利用を許可されたユーザーを表す。
// user_detailsテーブルからロードされ、このシステムからは読み取り専用。
type AuthorizedUser struct {
	AuthID string
	Email  string
	Name   string
}
