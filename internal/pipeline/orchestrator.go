package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/fachebot/knowledge-hub/internal/agent"
	"github.com/fachebot/knowledge-hub/internal/history"
	"github.com/fachebot/knowledge-hub/internal/logger"
)

// Pipeline 三个阶段的模型调用（便于测试注入 mock）
type Pipeline interface {
	GeneratePerspectives(ctx context.Context, question string) ([]string, error)
	AnswerForPerspective(ctx context.Context, question, perspective string) (string, error)
	Synthesize(ctx context.Context, question string, answers *agent.PerspectiveAnswers) (string, error)
}

// Result 一次成功请求的全部产出
type Result struct {
	Question     string
	Perspectives []string
	Answers      []agent.PerspectiveAnswer
	FinalAnswer  string
	Entry        history.Entry
	Saved        bool
}

// Orchestrator 顺序执行：生成观点 -> 逐个回答 -> 汇总 -> 写入历史
type Orchestrator struct {
	pipeline Pipeline
	store    history.Store
}

func NewOrchestrator(pipeline Pipeline, store history.Store) *Orchestrator {
	return &Orchestrator{
		pipeline: pipeline,
		store:    store,
	}
}

// Run 处理一次提交。问题为空返回 ErrEmptyQuestion；没有观点返回 ErrNoPerspectives；
// 任一阶段模型调用失败返回 *ModelError。失败时不写历史
func (o *Orchestrator) Run(ctx context.Context, question string, obs Observer) (*Result, error) {
	if obs == nil {
		obs = NopObserver{}
	}

	if strings.TrimSpace(question) == "" {
		logger.Warnf("[Pipeline] 收到空问题，忽略")
		return nil, ErrEmptyQuestion
	}

	fail := func(err error) (*Result, error) {
		obs.OnStage(StageFailed)
		obs.OnFailed(err)
		return nil, err
	}

	// 观点生成
	logger.Infof("[Pipeline] 开始处理问题: %s", question)
	obs.OnStage(StageGeneratingPerspectives)
	perspectives, err := o.pipeline.GeneratePerspectives(ctx, question)
	if err != nil {
		logger.Errorf("[Pipeline] 生成观点失败: %v", err)
		return fail(&ModelError{Stage: StageGeneratingPerspectives, Err: err})
	}
	if len(perspectives) == 0 {
		logger.Warnf("[Pipeline] 模型未返回可用观点")
		return fail(ErrNoPerspectives)
	}
	logger.Infof("[Pipeline] 共 %d 个观点: %s", len(perspectives), strings.Join(perspectives, ", "))
	obs.OnPerspectives(perspectives)

	// 逐个观点回答，严格串行
	obs.OnStage(StageAnsweringPerspectives)
	answers := agent.NewPerspectiveAnswers()
	for i, perspective := range perspectives {
		if err := ctx.Err(); err != nil {
			logger.Warnf("[Pipeline] 请求已取消: %v", err)
			return fail(&ModelError{Stage: StageAnsweringPerspectives, Err: err})
		}

		obs.OnPerspectiveStart(i, perspective)
		text, err := o.pipeline.AnswerForPerspective(ctx, question, perspective)
		if err != nil {
			logger.Errorf("[Pipeline] 观点 %d/%d「%s」回答失败: %v", i+1, len(perspectives), perspective, err)
			return fail(&ModelError{Stage: StageAnsweringPerspectives, Err: err})
		}

		key := answers.Add(perspective, text)
		if key != perspective {
			logger.Warnf("[Pipeline] 观点「%s」重复，重命名为「%s」", perspective, key)
		}
		logger.Debugf("[Pipeline] 观点 %d/%d「%s」回答完成", i+1, len(perspectives), key)
		obs.OnPerspectiveAnswer(i, key, text)
	}

	// 汇总
	obs.OnStage(StageSynthesizing)
	finalAnswer, err := o.pipeline.Synthesize(ctx, question, answers)
	if err != nil {
		logger.Errorf("[Pipeline] 汇总失败: %v", err)
		return fail(&ModelError{Stage: StageSynthesizing, Err: err})
	}
	obs.OnFinalAnswer(finalAnswer)

	result := &Result{
		Question:     question,
		Perspectives: perspectives,
		Answers:      answers.Items(),
		FinalAnswer:  finalAnswer,
	}

	// 写入历史，失败不影响已生成的回答。汇总完成后客户端断开也要落盘
	entry, err := o.store.Append(context.WithoutCancel(ctx), question, finalAnswer)
	if err != nil {
		logger.Errorf("[Pipeline] 保存历史失败: %v", err)
	} else {
		result.Entry = entry
		result.Saved = true
		obs.OnSaved(entry)
	}

	obs.OnStage(StageDone)
	logger.Infof("[Pipeline] 问题处理完成")
	return result, nil
}

// UserMessage 把 Run 返回的错误转换为展示给用户的文本和提示
func UserMessage(err error) (message, hint string) {
	var modelErr *ModelError
	switch {
	case errors.Is(err, ErrEmptyQuestion), errors.Is(err, ErrNoPerspectives):
		return err.Error(), ""
	case errors.As(err, &modelErr):
		return modelErr.UserMessage(), ModelHint
	default:
		return "エラーが発生しました: " + err.Error(), ModelHint
	}
}
