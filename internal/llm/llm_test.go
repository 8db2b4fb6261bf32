package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fachebot/knowledge-hub/internal/config"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// mockOpenAIClient 模拟 OpenAI 客户端
type mockOpenAIClient struct {
	mock.Mock
}

func (m *mockOpenAIClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

// mockGenaiModels 模拟 genai.Models
type mockGenaiModels struct {
	mock.Mock
}

func (m *mockGenaiModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, model, contents, cfg)
	resp, _ := args.Get(0).(*genai.GenerateContentResponse)
	return resp, args.Error(1)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func TestOpenAIClient_Generate(t *testing.T) {
	mockAPI := new(mockOpenAIClient)
	mockAPI.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.Model == "test-model" &&
			len(req.Messages) == 1 &&
			req.Messages[0].Role == openai.ChatMessageRoleUser &&
			req.Messages[0].Content == "質問"
	})).Return(openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "  回答\n"}},
		},
	}, nil)

	client := &OpenAIClient{config: &config.LLM{Model: "test-model", Timeout: time.Minute}, openaiClient: mockAPI}
	got, err := client.Generate(context.Background(), "質問")
	require.NoError(t, err)
	// 原样返回，不做裁剪
	assert.Equal(t, "  回答\n", got)
	mockAPI.AssertExpectations(t)
}

func TestOpenAIClient_APIError(t *testing.T) {
	mockAPI := new(mockOpenAIClient)
	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, errors.New("quota exceeded"))

	client := &OpenAIClient{config: &config.LLM{Model: "m"}, openaiClient: mockAPI}
	_, err := client.Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "调用 LLM API 失败")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestOpenAIClient_EmptyChoices(t *testing.T) {
	mockAPI := new(mockOpenAIClient)
	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{Choices: nil}, nil)

	client := &OpenAIClient{config: &config.LLM{Model: "m"}, openaiClient: mockAPI}
	_, err := client.Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "返回空结果")
}

func TestGeminiClient_Generate(t *testing.T) {
	models := new(mockGenaiModels)
	models.On("GenerateContent", mock.Anything, "gemini-test", mock.MatchedBy(func(contents []*genai.Content) bool {
		return len(contents) == 1 && len(contents[0].Parts) == 1 && contents[0].Parts[0].Text == "質問"
	}), (*genai.GenerateContentConfig)(nil)).Return(textResponse("回答"), nil)

	client := &GeminiClient{config: &config.LLM{Model: "gemini-test"}, models: models}
	got, err := client.Generate(context.Background(), "質問")
	require.NoError(t, err)
	assert.Equal(t, "回答", got)
	models.AssertExpectations(t)
}

func TestGeminiClient_Temperature(t *testing.T) {
	models := new(mockGenaiModels)
	models.On("GenerateContent", mock.Anything, "m", mock.Anything, mock.MatchedBy(func(cfg *genai.GenerateContentConfig) bool {
		return cfg != nil && cfg.Temperature != nil && *cfg.Temperature == float32(0.4)
	})).Return(textResponse("ok"), nil)

	client := &GeminiClient{config: &config.LLM{Model: "m", Temperature: 0.4}, models: models}
	_, err := client.Generate(context.Background(), "x")
	require.NoError(t, err)
	models.AssertExpectations(t)
}

func TestGeminiClient_Errors(t *testing.T) {
	models := new(mockGenaiModels)
	models.On("GenerateContent", mock.Anything, "fail", mock.Anything, mock.Anything).
		Return(nil, errors.New("permission denied"))
	models.On("GenerateContent", mock.Anything, "empty", mock.Anything, mock.Anything).
		Return(&genai.GenerateContentResponse{}, nil)

	client := &GeminiClient{config: &config.LLM{Model: "fail"}, models: models}
	_, err := client.Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")

	client = &GeminiClient{config: &config.LLM{Model: "empty"}, models: models}
	_, err = client.Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "返回空结果")
}

func TestNewGenerator(t *testing.T) {
	g, err := NewGenerator(context.Background(), &config.LLM{Provider: "openai", APIKey: "k", BaseURL: "http://localhost:1/v1", Model: "m"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, g)

	_, err = NewGenerator(context.Background(), &config.LLM{Provider: "unknown"}, nil)
	assert.Error(t, err)
}
