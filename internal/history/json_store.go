package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fachebot/knowledge-hub/internal/logger"
)

// JSONStore 把历史保存为一个 JSON 数组文件，每次保存整体重写
type JSONStore struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path, now: time.Now}
}

func (s *JSONStore) Load(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return nil, err
	}
	sortNewestFirst(entries)
	return entries, nil
}

func (s *JSONStore) Append(ctx context.Context, question, answer string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{
		Timestamp: formatTimestamp(s.now()),
		Question:  question,
		Answer:    answer,
	}
	entries = append(entries, entry)

	if err := s.write(entries); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (s *JSONStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

// read 文件不存在返回空；内容损坏时记录警告并视为空
func (s *JSONStore) read() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取历史文件失败: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warnf("[History] 历史文件 %s 解析失败，按空历史处理: %v", s.path, err)
		return nil, nil
	}
	return entries, nil
}

func (s *JSONStore) write(entries []Entry) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建历史目录失败: %w", err)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("序列化历史失败: %w", err)
	}

	if err := os.WriteFile(s.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("写入历史文件失败: %w", err)
	}
	return nil
}
