package repository

import (
	"database/sql"
	"time"
)

// nullString は文字列ポインタをsql.NullStringへ変換する。
// nilおよび空文字列はNULLとして書き込む（空値はクリア指定として扱う）。
func nullString(p *string) sql.NullString {
	if p == nil || *p == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// nullTime は時刻ポインタをsql.NullTimeへ変換する。
// nilおよびゼロ時刻はNULLとして書き込む。
func nullTime(p *time.Time) sql.NullTime {
	if p == nil || p.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *p, Valid: true}
}

// nullInt64 は整数ポインタをsql.NullInt64へ変換する。nilはNULLとして書き込む。
func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

// strPtr はsql.NullStringを文字列ポインタへ変換する。NULLはnilになる。
func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// timePtr はsql.NullTimeを時刻ポインタへ変換する。NULLはnilになる。
func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Time
}

// int64Ptr はsql.NullInt64を整数ポインタへ変換する。NULLはnilになる。
func int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	return &ni.Int64
}
