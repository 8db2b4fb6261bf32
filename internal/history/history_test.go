package history

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fachebot/knowledge-hub/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock 依次返回给定时间
func fakeClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func at(hour, min, sec int) time.Time {
	return time.Date(2025, 3, 1, hour, min, sec, 0, time.Local)
}

func newTestStores(t *testing.T) map[string]Store {
	dir := t.TempDir()

	js := NewJSONStore(filepath.Join(dir, "history.json"))
	js.now = fakeClock(at(9, 0, 0), at(10, 0, 0), at(11, 0, 0))

	ss, err := NewSQLiteStore(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	ss.now = fakeClock(at(9, 0, 0), at(10, 0, 0), at(11, 0, 0))
	t.Cleanup(func() { _ = ss.Close() })

	return map[string]Store{"json": js, "sqlite": ss}
}

func TestStore_LoadNewestFirst(t *testing.T) {
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			e1, err := store.Append(ctx, "Q1", "A1")
			require.NoError(t, err)
			_, err = store.Append(ctx, "Q2", "A2")
			require.NoError(t, err)
			_, err = store.Append(ctx, "Q3", "A3")
			require.NoError(t, err)

			assert.Equal(t, "2025-03-01 09:00:00", e1.Timestamp)

			entries, err := store.Load(ctx)
			require.NoError(t, err)
			require.Len(t, entries, 3)
			assert.Equal(t, "Q3", entries[0].Question)
			assert.Equal(t, "Q2", entries[1].Question)
			assert.Equal(t, "Q1", entries[2].Question)
			assert.Equal(t, "A3", entries[0].Answer)
		})
	}
}

func TestStore_ResetOnBoot(t *testing.T) {
	for name, store := range newTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := store.Append(ctx, "Q", "A")
			require.NoError(t, err)

			require.NoError(t, ResetOnBoot(ctx, store))

			entries, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, entries)

			// 空存储再次重置不报错
			assert.NoError(t, ResetOnBoot(ctx, store))
		})
	}
}

func TestJSONStore_RestartClearsPriorContent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.json")

	first := NewJSONStore(path)
	_, err := first.Append(ctx, "Q", "A")
	require.NoError(t, err)

	// 模拟进程重启
	second := NewJSONStore(path)
	require.NoError(t, ResetOnBoot(ctx, second))

	entries, err := second.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestJSONStore_FileFormat(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	store := NewJSONStore(path)
	store.now = fakeClock(at(12, 30, 5))

	_, err := store.Append(ctx, "Pythonの基本", "<b>FINAL</b>")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Pythonの基本")
	assert.Contains(t, string(data), "<b>FINAL</b>")

	var raw []map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, []map[string]string{
		{"timestamp": "2025-03-01 12:30:05", "question": "Pythonの基本", "answer": "<b>FINAL</b>"},
	}, raw)
}

func TestJSONStore_CorruptedFileTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	store := NewJSONStore(path)
	entries, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// 损坏文件不影响追加
	_, err = store.Append(ctx, "Q", "A")
	require.NoError(t, err)
	entries, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSortNewestFirst_SameSecond(t *testing.T) {
	entries := []Entry{
		{Timestamp: "2025-03-01 10:00:00", Question: "a"},
		{Timestamp: "2025-03-01 10:00:01", Question: "b"},
		{Timestamp: "2025-03-01 10:00:01", Question: "c"},
		{Timestamp: "2025-03-01 09:59:59", Question: "d"},
	}
	sortNewestFirst(entries)

	var got []string
	for _, e := range entries {
		got = append(got, e.Question)
	}
	assert.Equal(t, []string{"c", "b", "a", "d"}, got)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(config.History{Driver: "json", Path: filepath.Join(dir, "h.json")})
	require.NoError(t, err)
	assert.IsType(t, &JSONStore{}, s)

	s, err = Open(config.History{Driver: "sqlite", Path: filepath.Join(dir, "h.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	assert.NoError(t, s.Close())

	_, err = Open(config.History{Driver: "redis"})
	assert.Error(t, err)
}
