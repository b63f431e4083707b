package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/idstore/internal/model"
)

// PostgresAccountRepo はPostgreSQLを使用したアカウント紐付けリポジトリ。
type PostgresAccountRepo struct {
	db *sql.DB
}

// NewPostgresAccountRepo はPostgresAccountRepoを生成する。
func NewPostgresAccountRepo(db *sql.DB) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: db}
}

// Link はアカウント行を作成し、保存された行を返す。
// OAuthトークン関連の任意フィールドは未設定の場合NULLとして保存される。
func (r *PostgresAccountRepo) Link(ctx context.Context, account *model.Account) (*model.Account, error) {
	var (
		linked       model.Account
		accessToken  sql.NullString
		expiresAt    sql.NullInt64
		refreshToken sql.NullString
		idToken      sql.NullString
		scope        sql.NullString
		sessionState sql.NullString
		tokenType    sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO accounts
		   (user_id, provider, type, provider_account_id, access_token,
		    expires_at, refresh_token, id_token, scope, session_state, token_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING user_id, provider, type, provider_account_id, access_token,
		   expires_at, refresh_token, id_token, scope, session_state, token_type`,
		account.UserID, account.Provider, account.Type, account.ProviderAccountID,
		nullString(account.AccessToken), nullInt64(account.ExpiresAt),
		nullString(account.RefreshToken), nullString(account.IDToken),
		nullString(account.Scope), nullString(account.SessionState),
		nullString(account.TokenType),
	).Scan(
		&linked.UserID, &linked.Provider, &linked.Type, &linked.ProviderAccountID,
		&accessToken, &expiresAt, &refreshToken, &idToken, &scope, &sessionState,
		&tokenType,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to link account: %w", err)
	}
	linked.AccessToken = strPtr(accessToken)
	linked.ExpiresAt = int64Ptr(expiresAt)
	linked.RefreshToken = strPtr(refreshToken)
	linked.IDToken = strPtr(idToken)
	linked.Scope = strPtr(scope)
	linked.SessionState = strPtr(sessionState)
	linked.TokenType = strPtr(tokenType)
	return &linked, nil
}

// Unlink は(provider, providerAccountID)に一致するアカウント行を削除する。
// 一致する行がない場合も成功として扱う。
func (r *PostgresAccountRepo) Unlink(ctx context.Context, provider, providerAccountID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE provider = $1 AND provider_account_id = $2`,
		provider, providerAccountID,
	)
	if err != nil {
		return fmt.Errorf("failed to unlink account: %w", err)
	}
	return nil
}

// compile-time interface check
var _ AccountRepository = (*PostgresAccountRepo)(nil)
