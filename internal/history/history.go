package history

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fachebot/knowledge-hub/internal/config"
	"github.com/fachebot/knowledge-hub/internal/logger"
)

// TimestampLayout 固定宽度，字符串序即时间序
const TimestampLayout = "2006-01-02 15:04:05"

// Entry 一次完成的问答记录
type Entry struct {
	Timestamp string `json:"timestamp"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

// Store 历史记录存储
type Store interface {
	// Load 返回全部记录，按 timestamp 倒序
	Load(ctx context.Context) ([]Entry, error)
	// Append 以当前本地时间追加一条记录
	Append(ctx context.Context, question, answer string) (Entry, error)
	// Reset 清空全部记录
	Reset(ctx context.Context) error
	Close() error
}

// Open 根据配置打开存储
func Open(c config.History) (Store, error) {
	switch c.Driver {
	case "json":
		return NewJSONStore(c.Path), nil
	case "sqlite":
		return NewSQLiteStore(c.Path)
	default:
		return nil, fmt.Errorf("不支持的 History.Driver: %s", c.Driver)
	}
}

// ResetOnBoot 进程启动时调用一次，清空上次运行留下的历史
func ResetOnBoot(ctx context.Context, store Store) error {
	if err := store.Reset(ctx); err != nil {
		return fmt.Errorf("重置历史记录失败: %w", err)
	}
	logger.Infof("[History] 启动时已清空历史记录")
	return nil
}

func formatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// sortNewestFirst 按 timestamp 倒序，同一秒内后写入的排在前面
func sortNewestFirst(entries []Entry) {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
}
