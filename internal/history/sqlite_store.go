package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const createHistoryTable = `CREATE TABLE IF NOT EXISTS history (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	question  TEXT NOT NULL,
	answer    TEXT NOT NULL
)`

// SQLiteStore 把历史保存在 SQLite 的 history 表
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建数据目录失败: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=rwc&_journal_mode=WAL&_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createHistoryTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("创建 history 表失败: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT timestamp, question, answer FROM history ORDER BY timestamp DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("查询历史失败: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Timestamp, &e.Question, &e.Answer); err != nil {
			return nil, fmt.Errorf("读取历史失败: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Append(ctx context.Context, question, answer string) (Entry, error) {
	entry := Entry{
		Timestamp: formatTimestamp(s.now()),
		Question:  question,
		Answer:    answer,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (timestamp, question, answer) VALUES (?, ?, ?)`,
		entry.Timestamp, entry.Question, entry.Answer)
	if err != nil {
		return Entry{}, fmt.Errorf("写入历史失败: %w", err)
	}
	return entry, nil
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return fmt.Errorf("清空历史失败: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
