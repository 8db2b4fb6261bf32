package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fachebot/knowledge-hub/internal/config"
	"github.com/fachebot/knowledge-hub/internal/logger"
	"github.com/sashabaranov/go-openai"
)

// openAIClientInterface 定义 OpenAI 客户端接口，便于测试
type openAIClientInterface interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient 调用兼容 OpenAI Chat Completions 的端点
type OpenAIClient struct {
	config       *config.LLM
	openaiClient openAIClientInterface
}

func NewOpenAIClient(cfg *config.LLM, httpClient *http.Client) *OpenAIClient {
	openaiConfig := openai.DefaultConfig(cfg.APIKey)
	openaiConfig.BaseURL = cfg.BaseURL
	if httpClient != nil {
		openaiConfig.HTTPClient = httpClient
	}

	return &OpenAIClient{
		config:       cfg,
		openaiClient: openai.NewClientWithConfig(openaiConfig),
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.config.Temperature,
	}

	logger.Debugf("[LLM] openai 请求, model=%s, prompt 长度=%d", c.config.Model, len(prompt))
	resp, err := c.openaiClient.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("调用 LLM API 失败: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM API 返回空结果")
	}

	return resp.Choices[0].Message.Content, nil
}
