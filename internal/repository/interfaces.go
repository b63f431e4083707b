// Package repository はアイデンティティデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/idstore/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成し、保存された行を返す。
	// 未設定の任意フィールドはNULLとして保存される。
	// メールアドレスの一意性は事前チェックせず、違反はストレージエラーとして伝播する。
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByAccount は(provider, providerAccountID)で紐付くユーザーを検索する。
	// accountsテーブルとのJOINで解決する。見つからない場合はnilを返す。
	FindByAccount(ctx context.Context, provider, providerAccountID string) (*model.User, error)

	// Update は現在行の読み取りと更新の書き込みを同一トランザクションで行い、
	// 更新後の行を返す。対象が存在しない場合はnilを返す。
	Update(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error)

	// DeleteByID はユーザーと所有する全セッション・全アカウントを
	// 同一トランザクションで削除する。対象が存在しない場合もエラーにしない。
	DeleteByID(ctx context.Context, id string) error
}

// AccountRepository は外部IdPアカウント紐付けの永続化インターフェース。
type AccountRepository interface {
	// Link はアカウント行を作成し、保存された行を返す。
	// OAuthトークン関連の任意フィールドはNULLとして保存される。
	Link(ctx context.Context, account *model.Account) (*model.Account, error)

	// Unlink は(provider, providerAccountID)に一致するアカウント行を削除する。
	// 一致する行がない場合も成功として扱う。
	Unlink(ctx context.Context, provider, providerAccountID string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成し、保存された行を返す。
	Create(ctx context.Context, session *model.Session) (*model.Session, error)

	// FindByToken はセッショントークンでセッションを検索する。見つからない場合はnilを返す。
	FindByToken(ctx context.Context, sessionToken string) (*model.Session, error)

	// Update は現在行の読み取りと更新の書き込みを同一トランザクションで行い、
	// 更新後の行を返す。対象が存在しない場合はnilを返す。
	Update(ctx context.Context, sessionToken string, upd model.SessionUpdate) (*model.Session, error)

	// DeleteByToken は一致するセッション行を削除する。
	// 一致する行がない場合はセッション不在エラーを返す。
	DeleteByToken(ctx context.Context, sessionToken string) error
}

// VerificationTokenRepository はワンタイム検証トークンの永続化インターフェース。
type VerificationTokenRepository interface {
	// Create はトークン行を作成し、保存された行を返す。
	Create(ctx context.Context, token *model.VerificationToken) (*model.VerificationToken, error)

	// Use は(identifier, token)に一致する行を1往復のDELETE ... RETURNINGで
	// 原子的に消費し、削除された行を返す。一致する行がない場合はnilを返す。
	// 存在確認と削除を分離するとリプレイの競合が生じるため、単一文でなければならない。
	Use(ctx context.Context, identifier, token string) (*model.VerificationToken, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
// 読み取り・マージ・書き込みとカスケード削除はwithTx経由でこれを使用する。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
