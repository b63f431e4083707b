package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/idstore/internal/model"
)

// PostgresSessionRepo はPostgreSQLを使用したセッションリポジトリ。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// Create はセッションを作成し、保存された行を返す。
// expiresはtimestamptz列に保存され、time.Timeとしてそのまま往復する。
func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.Session) (*model.Session, error) {
	var created model.Session
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO sessions (id, user_id, expires, session_token)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, expires, session_token`,
		session.ID, session.UserID, session.Expires, session.SessionToken,
	).Scan(&created.ID, &created.UserID, &created.Expires, &created.SessionToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &created, nil
}

// FindByToken はセッショントークンでセッションを検索する。見つからない場合はnilを返す。
// 期限切れ判定は行わない。expiresとの比較は呼び出し元の責務。
func (r *PostgresSessionRepo) FindByToken(ctx context.Context, sessionToken string) (*model.Session, error) {
	session := &model.Session{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, expires, session_token FROM sessions WHERE session_token = $1`,
		sessionToken,
	).Scan(&session.ID, &session.UserID, &session.Expires, &session.SessionToken)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

// Update は現在行の読み取りと更新の書き込みを同一トランザクションで行う。
// SELECT ... FOR UPDATEで行ロックを取得するため、並行する更新で
// 書き込みが失われることはない。対象が存在しない場合はnilを返す。
func (r *PostgresSessionRepo) Update(ctx context.Context, sessionToken string, upd model.SessionUpdate) (*model.Session, error) {
	var updated *model.Session
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		current := model.Session{}
		err := tx.QueryRowContext(ctx,
			`SELECT id, user_id, expires, session_token FROM sessions
			 WHERE session_token = $1 FOR UPDATE`,
			sessionToken,
		).Scan(&current.ID, &current.UserID, &current.Expires, &current.SessionToken)
		if err == sql.ErrNoRows {
			// 対象なし: updatedはnilのまま
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to find session for update: %w", err)
		}

		merged := current.Merge(upd)

		row := model.Session{}
		err = tx.QueryRowContext(ctx,
			`UPDATE sessions
			 SET user_id = $2, expires = $3
			 WHERE session_token = $1
			 RETURNING id, user_id, expires, session_token`,
			sessionToken, merged.UserID, merged.Expires,
		).Scan(&row.ID, &row.UserID, &row.Expires, &row.SessionToken)
		if err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}

		updated = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteByToken は一致するセッション行を削除する。
// 一致する行がない場合はセッション不在エラーを返す。
func (r *PostgresSessionRepo) DeleteByToken(ctx context.Context, sessionToken string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE session_token = $1`,
		sessionToken,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return model.NewSessionNotFoundError()
	}
	return nil
}

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)
