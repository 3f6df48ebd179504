package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"

	// UTC 고정 폭 포맷, 문자열 비교 = 시간 비교
	timeLayout = "2006-01-02T15:04:05.000000Z"
)

var ErrNotFound = errors.New("record not found")

// Store sqlite(modernc) 또는 postgres(pgx) 공용 저장소
type Store struct {
	db     *sql.DB
	driver string
}

// Open 드라이버에 맞게 연결 후 Ping
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
		}
	case DriverPgx:
	default:
		return nil, fmt.Errorf("storage.Open(): unknown driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage.Open(): failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		// sqlite 쓰기는 한 연결로 직렬화
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.Open(): failed to connect to database: %w", err)
	}
	return &Store{db: db, driver: driver}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS uploads (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		mime TEXT,
		size_bytes BIGINT,
		storage_path TEXT,
		sha TEXT,
		redacted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_uploads_user ON uploads (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS chat_parses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		upload_id TEXT REFERENCES uploads (id) ON DELETE SET NULL,
		raw_text TEXT,
		turns TEXT,
		speaker_confidence DOUBLE PRECISION,
		needs_confirmation BOOLEAN,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_parses_user ON chat_parses (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS suggestions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		parse_id TEXT REFERENCES chat_parses (id) ON DELETE CASCADE,
		style TEXT,
		suggestion TEXT NOT NULL,
		accepted BOOLEAN,
		tts_path TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_suggestions_user ON suggestions (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS conversation_outcomes (
		id TEXT PRIMARY KEY,
		suggestion_id TEXT REFERENCES suggestions (id) ON DELETE CASCADE,
		outcome TEXT,
		feedback_score INTEGER,
		notes TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		display_name TEXT,
		tone TEXT,
		tz TEXT,
		locale TEXT,
		blocked_topics TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS voice_notes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		upload_id TEXT REFERENCES uploads (id) ON DELETE CASCADE,
		transcript TEXT,
		lang TEXT,
		duration_sec DOUBLE PRECISION,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS privacy_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		action TEXT NOT NULL,
		entity TEXT,
		meta TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS billing_plans (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		period TEXT,
		price_cents INTEGER,
		is_lifetime BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		plan_code TEXT REFERENCES billing_plans (code),
		status TEXT,
		started_at TEXT,
		renews_at TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_user ON subscriptions (user_id)`,
	// 사용량 기록, 데이터 삭제(PurgeUser) 대상 아님
	`CREATE TABLE IF NOT EXISTS usage_events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_usage_events_user ON usage_events (user_id, kind, created_at)`,
}

// Migrate 테이블 생성 및 요금제 시드
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("Migrate(): %w", err)
		}
	}
	return s.seedPlans(ctx)
}

// ? 플레이스홀더를 postgres용 $n으로 변환
func (s *Store) rebind(query string) string {
	if s.driver != DriverPgx {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// 영향받은 행이 없으면 ErrNotFound
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
