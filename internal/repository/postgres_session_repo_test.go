package repository

import (
	"testing"
	"time"

	"github.com/hitoshi/idstore/internal/model"
)

// PostgresSessionRepoはSessionRepositoryインターフェースを満たすことを検証
func TestPostgresSessionRepo_ImplementsInterface(t *testing.T) {
	var _ SessionRepository = (*PostgresSessionRepo)(nil)
}

// NewPostgresSessionRepoが正しく初期化されることを検証
func TestNewPostgresSessionRepo_Initializes(t *testing.T) {
	repo := NewPostgresSessionRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// ユニットテスト: セッション部分更新のマージが書き込み前に正しく適用されること
// （DB接続なしでロジックのみ検証）
func TestPostgresSessionRepo_MergeBeforeWrite_Concept(t *testing.T) {
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	current := model.Session{
		ID:           "sess-1",
		SessionToken: "tok-1",
		UserID:       "user-1",
		Expires:      expires,
	}

	newExpires := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	merged := current.Merge(model.SessionUpdate{Expires: &newExpires})

	if merged.UserID != "user-1" {
		t.Errorf("UserID = %q, want unchanged", merged.UserID)
	}
	if !merged.Expires.Equal(newExpires) {
		t.Errorf("Expires = %v, want %v", merged.Expires, newExpires)
	}
	// 検索キーは更新対象にならない
	if merged.SessionToken != "tok-1" {
		t.Errorf("SessionToken = %q, want unchanged", merged.SessionToken)
	}
}
