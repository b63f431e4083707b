package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/idstore/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// scanUser は1行分のユーザーをスキャンする。NULL列はnilポインタになる。
func scanUser(row *sql.Row) (*model.User, error) {
	var (
		user          model.User
		name          sql.NullString
		email         sql.NullString
		emailVerified sql.NullTime
		image         sql.NullString
	)
	if err := row.Scan(&user.ID, &name, &email, &emailVerified, &image); err != nil {
		return nil, err
	}
	user.Name = strPtr(name)
	user.Email = strPtr(email)
	user.EmailVerified = timePtr(emailVerified)
	user.Image = strPtr(image)
	return &user, nil
}

// Create はユーザーを作成し、保存された行を返す。
// 未設定の任意フィールドはNULLとして保存される。
// メールアドレスの一意制約違反はストレージエラーとしてそのまま伝播する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, name, email, email_verified, image)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, name, email, email_verified, image`,
		user.ID, nullString(user.Name), nullString(user.Email),
		nullTime(user.EmailVerified), nullString(user.Image),
	)
	created, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, email_verified, image FROM users WHERE id = $1`,
		id,
	)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, email_verified, image FROM users WHERE email = $1`,
		email,
	)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// FindByAccount は(provider, providerAccountID)で紐付くユーザーを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByAccount(ctx context.Context, provider, providerAccountID string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT users.id, users.name, users.email, users.email_verified, users.image
		 FROM users
		 INNER JOIN accounts ON users.id = accounts.user_id
		 WHERE accounts.provider = $1 AND accounts.provider_account_id = $2`,
		provider, providerAccountID,
	)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by account: %w", err)
	}
	return user, nil
}

// Update は現在行の読み取りと更新の書き込みを同一トランザクションで行う。
// SELECT ... FOR UPDATEで行ロックを取得するため、並行する更新で
// 書き込みが失われることはない。対象が存在しない場合はnilを返す。
func (r *PostgresUserRepo) Update(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	var updated *model.User
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var (
			current       model.User
			name          sql.NullString
			email         sql.NullString
			emailVerified sql.NullTime
			image         sql.NullString
		)
		err := tx.QueryRowContext(ctx,
			`SELECT id, name, email, email_verified, image FROM users WHERE id = $1 FOR UPDATE`,
			id,
		).Scan(&current.ID, &name, &email, &emailVerified, &image)
		if err == sql.ErrNoRows {
			// 対象なし: updatedはnilのまま
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to find user for update: %w", err)
		}
		current.Name = strPtr(name)
		current.Email = strPtr(email)
		current.EmailVerified = timePtr(emailVerified)
		current.Image = strPtr(image)

		merged := current.Merge(upd)

		var row model.User
		err = tx.QueryRowContext(ctx,
			`UPDATE users
			 SET name = $2, email = $3, email_verified = $4, image = $5
			 WHERE id = $1
			 RETURNING id, name, email, email_verified, image`,
			id, nullString(merged.Name), nullString(merged.Email),
			nullTime(merged.EmailVerified), nullString(merged.Image),
		).Scan(&row.ID, &name, &email, &emailVerified, &image)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		row.Name = strPtr(name)
		row.Email = strPtr(email)
		row.EmailVerified = timePtr(emailVerified)
		row.Image = strPtr(image)

		updated = &row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteByID はユーザーと所有する全セッション・全アカウントを
// 同一トランザクションで削除する。3文すべてが成功した場合のみコミットする。
// 対象ユーザーが存在しない場合もエラーにしない。
func (r *PostgresUserRepo) DeleteByID(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		// 外部キー制約があるため、所有される行から先に削除する
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM sessions WHERE user_id = $1`, id,
		); err != nil {
			return fmt.Errorf("failed to delete user sessions: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM accounts WHERE user_id = $1`, id,
		); err != nil {
			return fmt.Errorf("failed to delete user accounts: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM users WHERE id = $1`, id,
		); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
