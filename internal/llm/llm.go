package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fachebot/knowledge-hub/internal/config"
)

// Generator 一次同步的文本生成调用：prompt 进，文本出
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewGenerator 根据 Provider 创建模型客户端，httpClient 为 nil 时使用默认传输
func NewGenerator(ctx context.Context, cfg *config.LLM, httpClient *http.Client) (Generator, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg, httpClient), nil
	case "gemini":
		return NewGeminiClient(ctx, cfg, httpClient)
	default:
		return nil, fmt.Errorf("不支持的 LLM Provider: %s", cfg.Provider)
	}
}
