package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/fachebot/knowledge-hub/internal/llm"
	"github.com/fachebot/knowledge-hub/internal/logger"
)

// Agent 三个阶段各发起一次模型调用，不做重试，错误直接向上返回
type Agent struct {
	llm llm.Generator
}

func NewAgent(g llm.Generator) (*Agent, error) {
	if g == nil {
		return nil, errors.New("llm client is required")
	}
	return &Agent{llm: g}, nil
}

// GeneratePerspectives 请求模型列出 3~5 个回答观点
// 数量只是提示，不做校验；解析不出任何观点时返回空切片
func (a *Agent) GeneratePerspectives(ctx context.Context, question string) ([]string, error) {
	raw, err := a.llm.Generate(ctx, BuildPerspectivePrompt(question))
	if err != nil {
		return nil, fmt.Errorf("生成观点失败: %w", err)
	}

	perspectives := ParsePerspectives(raw)
	logger.Debugf("[Agent] 解析出 %d 个观点: %v", len(perspectives), perspectives)
	return perspectives, nil
}

// AnswerForPerspective 针对单个观点回答，原样返回模型输出
func (a *Agent) AnswerForPerspective(ctx context.Context, question, perspective string) (string, error) {
	text, err := a.llm.Generate(ctx, BuildAnswerPrompt(question, perspective))
	if err != nil {
		return "", fmt.Errorf("回答观点「%s」失败: %w", perspective, err)
	}
	return text, nil
}

// Synthesize 汇总各观点回答，原样返回模型输出
func (a *Agent) Synthesize(ctx context.Context, question string, answers *PerspectiveAnswers) (string, error) {
	text, err := a.llm.Generate(ctx, BuildSynthesisPrompt(question, answers))
	if err != nil {
		return "", fmt.Errorf("汇总回答失败: %w", err)
	}
	return text, nil
}
