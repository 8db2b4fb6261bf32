package pipeline

import "github.com/fachebot/knowledge-hub/internal/history"

// Stage 一次请求所处的阶段
type Stage int

const (
	StageIdle Stage = iota
	StageGeneratingPerspectives
	StageAnsweringPerspectives
	StageSynthesizing
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageGeneratingPerspectives:
		return "generating_perspectives"
	case StageAnsweringPerspectives:
		return "answering_perspectives"
	case StageSynthesizing:
		return "synthesizing"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Observer 接收各阶段的中间结果，用于逐步展示
type Observer interface {
	OnStage(stage Stage)
	OnPerspectives(perspectives []string)
	OnPerspectiveStart(index int, perspective string)
	OnPerspectiveAnswer(index int, perspective, answer string)
	OnFinalAnswer(answer string)
	OnSaved(entry history.Entry)
	OnFailed(err error)
}

// NopObserver 空实现，可嵌入后只覆盖关心的回调
type NopObserver struct{}

func (NopObserver) OnStage(Stage) {}
func (NopObserver) OnPerspectives([]string) {}
func (NopObserver) OnPerspectiveStart(int, string) {}
func (NopObserver) OnPerspectiveAnswer(int, string, string) {}
func (NopObserver) OnFinalAnswer(string) {}
func (NopObserver) OnSaved(history.Entry) {}
func (NopObserver) OnFailed(error) {}
