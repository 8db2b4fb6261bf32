package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fachebot/knowledge-hub/internal/config"
	"github.com/fachebot/knowledge-hub/internal/logger"
	"google.golang.org/genai"
)

// genaiModels 对应 *genai.Models，便于测试注入 mock
type genaiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient 调用 Gemini API
type GeminiClient struct {
	config *config.LLM
	models genaiModels
}

func NewGeminiClient(ctx context.Context, cfg *config.LLM, httpClient *http.Client) (*GeminiClient, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if httpClient != nil {
		cc.HTTPClient = httpClient
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("创建 Gemini 客户端失败: %w", err)
	}

	return &GeminiClient{
		config: cfg,
		models: client.Models,
	}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	var gc *genai.GenerateContentConfig
	if c.config.Temperature > 0 {
		gc = &genai.GenerateContentConfig{Temperature: genai.Ptr(c.config.Temperature)}
	}

	logger.Debugf("[LLM] gemini 请求, model=%s, prompt 长度=%d", c.config.Model, len(prompt))
	resp, err := c.models.GenerateContent(ctx, c.config.Model, genai.Text(prompt), gc)
	if err != nil {
		return "", fmt.Errorf("调用 LLM API 失败: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("LLM API 返回空结果")
	}

	return resp.Text(), nil
}
