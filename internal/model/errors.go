// Package model は認証フレームワークのドメインモデルを定義する。
package model

import "fmt"

// StoreError は統一エラーフォーマットを表す。
// 呼び出し元に返す原因カテゴリと対処方法を含む。
type StoreError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, system
	Action   string // 呼び出し元向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *StoreError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUserIDRequired  = "USER_ID_REQUIRED"
	ErrCodeUserNotFound    = "USER_NOT_FOUND"
	ErrCodeSessionNotFound = "SESSION_NOT_FOUND"
	ErrCodeSessionOrphaned = "SESSION_ORPHANED"
)

// NewUserIDRequiredError はユーザー更新にIDが渡されなかった場合のエラーを生成する。
// ストレージへ問い合わせる前に即時返却する事前条件違反。
func NewUserIDRequiredError() *StoreError {
	return &StoreError{
		Code:     ErrCodeUserIDRequired,
		Message:  "ユーザー更新にIDが指定されていません。",
		Category: "validation",
		Action:   "更新対象のユーザーIDを指定してください。",
	}
}

// NewUserNotFoundError は更新対象のユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError(userID string) *StoreError {
	return &StoreError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", userID),
		Category: "auth",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewSessionNotFoundError はセッションが見つからない場合のエラーを生成する。
// セッションとユーザーの同時取得では、欠落セッションは「不在」ではなくエラーとして扱う。
func NewSessionNotFoundError() *StoreError {
	return &StoreError{
		Code:     ErrCodeSessionNotFound,
		Message:  "指定されたセッションが見つかりません。",
		Category: "auth",
		Action:   "再度ログインしてください。",
	}
}

// NewSessionOrphanedError はセッションの所有ユーザーが存在しない場合のエラーを生成する。
// カスケード削除が機能していればこの状態は発生しない。
func NewSessionOrphanedError(userID string) *StoreError {
	return &StoreError{
		Code:     ErrCodeSessionOrphaned,
		Message:  fmt.Sprintf("セッションの所有ユーザーが存在しません: %s", userID),
		Category: "system",
		Action:   "セッションを破棄して再度ログインしてください。",
	}
}
