package repository

import (
	"testing"

	"github.com/hitoshi/idstore/internal/model"
)

// PostgresAccountRepoはAccountRepositoryインターフェースを満たすことを検証
func TestPostgresAccountRepo_ImplementsInterface(t *testing.T) {
	var _ AccountRepository = (*PostgresAccountRepo)(nil)
}

// NewPostgresAccountRepoが正しく初期化されることを検証
func TestNewPostgresAccountRepo_Initializes(t *testing.T) {
	repo := NewPostgresAccountRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// OAuthトークン関連の任意フィールドが未設定の場合NULLとして書き込まれることを検証
func TestPostgresAccountRepo_OptionalFieldsWrittenAsNull(t *testing.T) {
	account := model.Account{
		UserID:            "user-1",
		Type:              "oauth",
		Provider:          "google",
		ProviderAccountID: "google-123",
	}

	if nullString(account.AccessToken).Valid {
		t.Error("omitted access_token should be written as NULL")
	}
	if nullInt64(account.ExpiresAt).Valid {
		t.Error("omitted expires_at should be written as NULL")
	}
	if nullString(account.RefreshToken).Valid {
		t.Error("omitted refresh_token should be written as NULL")
	}
	if nullString(account.IDToken).Valid {
		t.Error("omitted id_token should be written as NULL")
	}
	if nullString(account.Scope).Valid {
		t.Error("omitted scope should be written as NULL")
	}
	if nullString(account.SessionState).Valid {
		t.Error("omitted session_state should be written as NULL")
	}
	if nullString(account.TokenType).Valid {
		t.Error("omitted token_type should be written as NULL")
	}
}

// 必須フィールドが揃ったアカウントモデルが構築できることを検証
func TestPostgresAccountRepo_AccountModel_Fields(t *testing.T) {
	expiresAt := int64(1893456000)
	account := model.Account{
		UserID:            "user-1",
		Type:              "oauth",
		Provider:          "github",
		ProviderAccountID: "gh-42",
		AccessToken:       strp("at-token"),
		ExpiresAt:         &expiresAt,
		Scope:             strp("read:user"),
	}

	if account.Provider != "github" || account.ProviderAccountID != "gh-42" {
		t.Errorf("composite key = (%q, %q), want (github, gh-42)", account.Provider, account.ProviderAccountID)
	}
	ni := nullInt64(account.ExpiresAt)
	if !ni.Valid || ni.Int64 != expiresAt {
		t.Errorf("expires_at = %+v, want valid %d", ni, expiresAt)
	}
}
