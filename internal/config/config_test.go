package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnvKey(t *testing.T) {
	t.Setenv(DefaultAPIKeyEnv, "env-key")

	c, err := Load([]byte("LLM:\n  Temperature: 0.5\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultProvider, c.LLM.Provider)
	assert.Equal(t, DefaultModel, c.LLM.Model)
	assert.Equal(t, "env-key", c.LLM.APIKey)
	assert.Equal(t, DefaultTimeout, c.LLM.Timeout)
	assert.Equal(t, "json", c.History.Driver)
	assert.Equal(t, DefaultHistoryPath, c.History.Path)
	assert.Equal(t, DefaultServerAddr, c.Server.Addr)
	assert.Len(t, c.Templates, 12)
}

func TestLoad_InlineKeyWins(t *testing.T) {
	t.Setenv("MY_KEY", "env-key")

	c, err := Load([]byte("LLM:\n  APIKey: inline\n  APIKeyEnv: MY_KEY\n  Timeout: 30s\n"))
	require.NoError(t, err)
	assert.Equal(t, "inline", c.LLM.APIKey)
	assert.Equal(t, 30*time.Second, c.LLM.Timeout)
}

func TestLoad_CustomTemplates(t *testing.T) {
	data := `
LLM:
  APIKey: k
Templates:
  - Name: 挨拶
    Text: こんにちは
`
	c, err := Load([]byte(data))
	require.NoError(t, err)
	require.Len(t, c.Templates, 1)
	assert.Equal(t, "挨拶", c.Templates[0].Name)
}

func TestValidate(t *testing.T) {
	t.Setenv(DefaultAPIKeyEnv, "")

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"缺少 APIKey", "LLM:\n  Provider: gemini\n", "LLM.APIKey"},
		{"未知 Provider", "LLM:\n  Provider: claude\n  APIKey: k\n", "LLM.Provider"},
		{"openai 缺少 BaseURL", "LLM:\n  Provider: openai\n  APIKey: k\n", "LLM.BaseURL"},
		{"未知 History.Driver", "LLM:\n  APIKey: k\nHistory:\n  Driver: redis\n", "History.Driver"},
		{"代理缺少 Host", "LLM:\n  APIKey: k\nSock5Proxy:\n  Enable: true\n  Port: 1080\n", "Sock5Proxy.Host"},
		{"Temperature 越界", "LLM:\n  APIKey: k\n  Temperature: 3\n", "LLM.Temperature"},
		{"模板为空", "LLM:\n  APIKey: k\nTemplates:\n  - Name: x\n", "Templates[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("LLM:\n  APIKey: k\nHistory:\n  Driver: sqlite\n  Path: data/history.db\n"), 0644))

	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.History.Driver)
	assert.Equal(t, "data/history.db", c.History.Path)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
