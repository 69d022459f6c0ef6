package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/dayboard/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// listAuthorizedQuery は認可済みユーザーの取得クエリ。
// 認証に使えない不完全な行（auth_id/emailがNULL）は返さない。
const listAuthorizedQuery = `SELECT auth_id, email, COALESCE(name, '')
 FROM user_details
 WHERE authorized = TRUE AND auth_id IS NOT NULL AND email IS NOT NULL`

// ListAuthorized は認可済みユーザーの全件を取得する。
// nameがNULLの行は空文字列として扱う。
func (r *PostgresUserRepo) ListAuthorized(ctx context.Context) ([]model.AuthorizedUser, error) {
	rows, err := r.db.QueryContext(ctx, listAuthorizedQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list authorized users: %w", err)
	}
	defer rows.Close()

	var users []model.AuthorizedUser
	for rows.Next() {
		var u model.AuthorizedUser
		if err := rows.Scan(&u.AuthID, &u.Email, &u.Name); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
