package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fachebot/knowledge-hub/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore 统计 Reset 调用次数，可指定返回错误
type countingStore struct {
	history.Store
	resets int
	err    error
}

func (s *countingStore) Reset(ctx context.Context) error {
	s.resets++
	return s.err
}

func TestStart_EmptySpecDisabled(t *testing.T) {
	s := NewScheduler(history.NewJSONStore(filepath.Join(t.TempDir(), "h.json")), "")
	require.NoError(t, s.Start())
	assert.Empty(t, s.cron.Entries())
	s.Stop()
}

func TestStart_InvalidSpec(t *testing.T) {
	s := NewScheduler(history.NewJSONStore(filepath.Join(t.TempDir(), "h.json")), "not a cron")
	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "注册清空历史任务失败")
}

func TestRunHistoryReset(t *testing.T) {
	ctx := context.Background()
	store := history.NewJSONStore(filepath.Join(t.TempDir(), "h.json"))
	_, err := store.Append(ctx, "Q", "A")
	require.NoError(t, err)

	s := NewScheduler(store, "0 4 * * *")
	require.NoError(t, s.Start())
	defer s.Stop()
	assert.Len(t, s.cron.Entries(), 1)

	s.runHistoryReset()
	entries, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunHistoryReset_Errors(t *testing.T) {
	store := &countingStore{err: errors.New("locked")}
	s := NewScheduler(store, "@daily")
	require.NoError(t, s.Start())
	s.runHistoryReset()
	assert.Equal(t, 1, store.resets)

	// 停止后不再执行
	s.Stop()
	s.runHistoryReset()
	assert.Equal(t, 1, store.resets)
}
