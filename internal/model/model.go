// Package model は認証フレームワークのドメインモデルを定義する。
package model

import "time"

// User は認証フレームワークの利用ユーザーを表す。
// Name、Email、EmailVerified、Imageは未設定を許容し、NULLとして保存される。
// IDは採番後に変更されない。
type User struct {
	ID            string
	Name          *string
	Email         *string
	EmailVerified *time.Time
	Image         *string
}

// Account はユーザーと外部IdPの紐付け情報を表す。
// (Provider, ProviderAccountID)の組が外部アイデンティティを一意に識別する。
// アカウントは必ず1人のユーザーに所有され、所有者の削除と同時に削除される。
type Account struct {
	UserID            string
	Type              string
	Provider          string
	ProviderAccountID string
	AccessToken       *string
	ExpiresAt         *int64
	RefreshToken      *string
	IDToken           *string
	Scope             *string
	SessionState      *string
	TokenType         *string
}

// Session はユーザーのログインセッションを表す。
// SessionTokenがセッション再開時の唯一の検索キーとなる。
type Session struct {
	ID           string
	SessionToken string
	UserID       string
	Expires      time.Time
}

// VerificationToken はワンタイム検証トークンを表す。
// (Identifier, Token)の組が消費キー。所有者を持たず、消費成功と同時に削除される。
type VerificationToken struct {
	Identifier string
	Token      string
	Expires    time.Time
}

// UserUpdate はユーザーの部分更新の指定を表す。
// nilのフィールドは現在の保存値を維持する。
// 空文字列・ゼロ時刻を指すフィールドはNULLへのクリアを意味する。
type UserUpdate struct {
	Name          *string
	Email         *string
	EmailVerified *time.Time
	Image         *string
}

// Merge は現在値に更新を重ねた新しいUserを返す。レシーバは変更しない。
func (u User) Merge(upd UserUpdate) User {
	merged := u
	if upd.Name != nil {
		merged.Name = upd.Name
	}
	if upd.Email != nil {
		merged.Email = upd.Email
	}
	if upd.EmailVerified != nil {
		merged.EmailVerified = upd.EmailVerified
	}
	if upd.Image != nil {
		merged.Image = upd.Image
	}
	return merged
}

// SessionUpdate はセッションの部分更新の指定を表す。
// nilのフィールドは現在の保存値を維持する。
type SessionUpdate struct {
	UserID  *string
	Expires *time.Time
}

// Merge は現在値に更新を重ねた新しいSessionを返す。レシーバは変更しない。
func (s Session) Merge(upd SessionUpdate) Session {
	merged := s
	if upd.UserID != nil {
		merged.UserID = *upd.UserID
	}
	if upd.Expires != nil {
		merged.Expires = *upd.Expires
	}
	return merged
}
