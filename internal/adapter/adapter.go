// Package adapter は認証フレームワーク向けのストア操作の窓口を提供する。
// 4つのリポジトリを束ね、ID採番・事前条件検査・不在結果のエラー変換と
// 観測フック（構造化ログ・メトリクス）をこの層に集約する。
// SQLはリポジトリ層に閉じ、この層はストレージへ直接アクセスしない。
package adapter

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/idstore/internal/metrics"
	"github.com/hitoshi/idstore/internal/model"
	"github.com/hitoshi/idstore/internal/repository"
)

// Adapter は認証フレームワークが要求する一連のストア操作を提供する。
// 内部にスレッドやスケジューラを持たず、各操作は呼び出しごとに完結する。
type Adapter struct {
	users     repository.UserRepository
	accounts  repository.AccountRepository
	sessions  repository.SessionRepository
	tokens    repository.VerificationTokenRepository
	collector metrics.MetricsCollector
}

// New はAdapterを生成する。
// collectorはnil許容で、nilの場合メトリクスは記録されない。
func New(
	users repository.UserRepository,
	accounts repository.AccountRepository,
	sessions repository.SessionRepository,
	tokens repository.VerificationTokenRepository,
	collector metrics.MetricsCollector,
) *Adapter {
	return &Adapter{
		users:     users,
		accounts:  accounts,
		sessions:  sessions,
		tokens:    tokens,
		collector: collector,
	}
}

// observe は操作の結果とレイテンシを記録する。各操作の末尾でdefer経由で呼ぶ。
func (a *Adapter) observe(operation string, start time.Time, outcome *string) {
	elapsed := time.Since(start)
	if a.collector != nil {
		a.collector.RecordOperation(operation, *outcome, elapsed)
	}
	slog.Debug("store operation finished",
		slog.String("operation", operation),
		slog.String("outcome", *outcome),
		slog.Duration("elapsed", elapsed),
	)
}

// outcomeOf はエラーと不在フラグから結果ラベルを決める。
func outcomeOf(err error, absent bool) string {
	switch {
	case err != nil:
		return metrics.OutcomeError
	case absent:
		return metrics.OutcomeAbsent
	default:
		return metrics.OutcomeOK
	}
}

// CreateUser はユーザーを作成し、採番済みIDを含む保存行を返す。
// IDが未指定の場合はUUIDを採番する。
func (a *Adapter) CreateUser(ctx context.Context, user model.User) (created *model.User, err error) {
	outcome := metrics.OutcomeOK
	defer a.observe("create_user", time.Now(), &outcome)

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	created, err = a.users.Create(ctx, &user)
	outcome = outcomeOf(err, false)
	return created, err
}

// GetUser は指定IDのユーザーを返す。見つからない場合は(nil, nil)。
func (a *Adapter) GetUser(ctx context.Context, id string) (*model.User, error) {
	outcome := metrics.OutcomeOK
	defer a.observe("get_user", time.Now(), &outcome)

	user, err := a.users.FindByID(ctx, id)
	outcome = outcomeOf(err, user == nil)
	return user, err
}

// GetUserByEmail はメールアドレスでユーザーを検索する。見つからない場合は(nil, nil)。
func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	outcome := metrics.OutcomeOK
	defer a.observe("get_user_by_email", time.Now(), &outcome)

	user, err := a.users.FindByEmail(ctx, email)
	outcome = outcomeOf(err, user == nil)
	return user, err
}

// GetUserByAccount は外部IdPアカウントに紐付くユーザーを検索する。
// 見つからない場合は(nil, nil)。
func (a *Adapter) GetUserByAccount(ctx context.Context, provider, providerAccountID string) (*model.User, error) {
	outcome := metrics.OutcomeOK
	defer a.observe("get_user_by_account", time.Now(), &outcome)

	user, err := a.users.FindByAccount(ctx, provider, providerAccountID)
	outcome = outcomeOf(err, user == nil)
	return user, err
}

// UpdateUser は指定フィールドだけを上書きし、更新後の行を返す。
// IDが空の場合はストレージへ問い合わせず事前条件違反を返す。
// 対象ユーザーが存在しない場合はエラーを返す。
func (a *Adapter) UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	outcome := metrics.OutcomeOK
	defer a.observe("update_user", time.Now(), &outcome)

	if id == "" {
		outcome = metrics.OutcomeError
		return nil, model.NewUserIDRequiredError()
	}

	user, err := a.users.Update(ctx, id, upd)
	if err != nil {
		outcome = metrics.OutcomeError
		return nil, err
	}
	if user == nil {
		outcome = metrics.OutcomeError
		return nil, model.NewUserNotFoundError(id)
	}
	return user, nil
}

// DeleteUser はユーザーと所有する全セッション・全アカウントを原子的に削除する。
func (a *Adapter) DeleteUser(ctx context.Context, id string) (err error) {
	outcome := metrics.OutcomeOK
	defer a.observe("delete_user", time.Now(), &outcome)

	err = a.users.DeleteByID(ctx, id)
	outcome = outcomeOf(err, false)
	return err
}

// LinkAccount は外部IdPアカウントをユーザーに紐付け、保存行を返す。
func (a *Adapter) LinkAccount(ctx context.Context, account model.Account) (*model.Account, error) {
	outcome := metrics.OutcomeOK
	defer a.observe("link_account", time.Now(), &outcome)

	linked, err := a.accounts.Link(ctx, &account)
	outcome = outcomeOf(err, false)
	return linked, err
}

// UnlinkAccount は紐付けを解除する。一致する行がない場合も成功として扱う。
func (a *Adapter) UnlinkAccount(ctx context.Context, provider, providerAccountID string) (err error) {
	outcome := metrics.OutcomeOK
	defer a.observe("unlink_account", time.Now(), &outcome)

	err = a.accounts.Unlink(ctx, provider, providerAccountID)
	outcome = outcomeOf(err, false)
	return err
}

// CreateSession はセッションを作成し、保存行を返す。IDはUUIDを採番する。
func (a *Adapter) CreateSession(ctx context.Context, sessionToken, userID string, expires time.Time) (*model.Session, error) {
	outcome := metrics.OutcomeOK
	defer a.observe("create_session", time.Now(), &outcome)

	session := &model.Session{
		ID:           uuid.New().String(),
		SessionToken: sessionToken,
		UserID:       userID,
		Expires:      expires,
	}
	created, err := a.sessions.Create(ctx, session)
	outcome = outcomeOf(err, false)
	return created, err
}

// GetSessionAndUser はセッションとその所有ユーザーを返す。
// 他の取得操作と異なり、セッションの不在は正常な結果ではなくエラーとして扱う。
// 所有ユーザーの欠落はカスケード削除の下では発生しないはずの異常としてエラーを返す。
func (a *Adapter) GetSessionAndUser(ctx context.Context, sessionToken string) (*model.Session, *model.User, error) {
	outcome := metrics.OutcomeOK
	defer a.observe("get_session_and_user", time.Now(), &outcome)

	session, err := a.sessions.FindByToken(ctx, sessionToken)
	if err != nil {
		outcome = metrics.OutcomeError
		return nil, nil, err
	}
	if session == nil {
		outcome = metrics.OutcomeError
		return nil, nil, model.NewSessionNotFoundError()
	}

	user, err := a.users.FindByID(ctx, session.UserID)
	if err != nil {
		outcome = metrics.OutcomeError
		return nil, nil, err
	}
	if user == nil {
		outcome = metrics.OutcomeError
		return nil, nil, model.NewSessionOrphanedError(session.UserID)
	}

	return session, user, nil
}

// UpdateSession は指定フィールドだけを上書きし、更新後の行を返す。
// 対象セッションが存在しない場合はエラーを返す。
func (a *Adapter) UpdateSession(ctx context.Context, sessionToken string, upd model.SessionUpdate) (*model.Session, error) {
	outcome := metrics.OutcomeOK
	defer a.observe("update_session", time.Now(), &outcome)

	session, err := a.sessions.Update(ctx, sessionToken, upd)
	if err != nil {
		outcome = metrics.OutcomeError
		return nil, err
	}
	if session == nil {
		outcome = metrics.OutcomeError
		return nil, model.NewSessionNotFoundError()
	}
	return session, nil
}

// DeleteSession は一致するセッション行を削除する。
// 一致する行がない場合は他の取得系と異なりエラーを返す。
func (a *Adapter) DeleteSession(ctx context.Context, sessionToken string) (err error) {
	outcome := metrics.OutcomeOK
	defer a.observe("delete_session", time.Now(), &outcome)

	err = a.sessions.DeleteByToken(ctx, sessionToken)
	outcome = outcomeOf(err, false)
	return err
}

// CreateVerificationToken は検証トークンを作成し、保存行を返す。
func (a *Adapter) CreateVerificationToken(ctx context.Context, identifier, token string, expires time.Time) (*model.VerificationToken, error) {
	outcome := metrics.OutcomeOK
	defer a.observe("create_verification_token", time.Now(), &outcome)

	created, err := a.tokens.Create(ctx, &model.VerificationToken{
		Identifier: identifier,
		Token:      token,
		Expires:    expires,
	})
	outcome = outcomeOf(err, false)
	return created, err
}

// UseVerificationToken は検証トークンを原子的に消費して返す。
// 一致するトークンがない（消費済みを含む）場合は(nil, nil)。
func (a *Adapter) UseVerificationToken(ctx context.Context, identifier, token string) (*model.VerificationToken, error) {
	outcome := metrics.OutcomeOK
	defer a.observe("use_verification_token", time.Now(), &outcome)

	used, err := a.tokens.Use(ctx, identifier, token)
	outcome = outcomeOf(err, used == nil)
	return used, err
}
