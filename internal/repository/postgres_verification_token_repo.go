package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/idstore/internal/model"
)

// PostgresVerificationTokenRepo はPostgreSQLを使用した検証トークンリポジトリ。
type PostgresVerificationTokenRepo struct {
	db *sql.DB
}

// NewPostgresVerificationTokenRepo はPostgresVerificationTokenRepoを生成する。
func NewPostgresVerificationTokenRepo(db *sql.DB) *PostgresVerificationTokenRepo {
	return &PostgresVerificationTokenRepo{db: db}
}

// Create はトークン行を作成し、保存された行を返す。
func (r *PostgresVerificationTokenRepo) Create(ctx context.Context, token *model.VerificationToken) (*model.VerificationToken, error) {
	created := &model.VerificationToken{}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO verification_token (identifier, expires, token)
		 VALUES ($1, $2, $3)
		 RETURNING identifier, expires, token`,
		token.Identifier, token.Expires, token.Token,
	).Scan(&created.Identifier, &created.Expires, &created.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create verification token: %w", err)
	}
	return created, nil
}

// Use は(identifier, token)に一致する行を単一のDELETE ... RETURNINGで
// 原子的に消費し、削除された行を返す。一致する行がない場合はnilを返す。
// 読み取りと削除を1往復で行うため、同一トークンの並行消費は片方だけが成功する。
func (r *PostgresVerificationTokenRepo) Use(ctx context.Context, identifier, token string) (*model.VerificationToken, error) {
	used := &model.VerificationToken{}
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM verification_token
		 WHERE identifier = $1 AND token = $2
		 RETURNING identifier, expires, token`,
		identifier, token,
	).Scan(&used.Identifier, &used.Expires, &used.Token)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to use verification token: %w", err)
	}
	return used, nil
}

// compile-time interface check
var _ VerificationTokenRepository = (*PostgresVerificationTokenRepo)(nil)
