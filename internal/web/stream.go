package web

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/fachebot/knowledge-hub/internal/history"
	"github.com/fachebot/knowledge-hub/internal/logger"
	"github.com/fachebot/knowledge-hub/internal/pipeline"
)

type statusView struct {
	Label string
	State string // running / complete / error
}

type answerView struct {
	Perspective string
	HTML        template.HTML
}

type errorView struct {
	Message string
	Hint    string
	Class   string
}

// streamObserver 每个阶段完成后立即写出对应片段并 Flush
type streamObserver struct {
	w        io.Writer
	flusher  http.Flusher
	pages    *template.Template
	markdown func(string) template.HTML
}

func newStreamObserver(w io.Writer, pages *template.Template, markdown func(string) template.HTML) *streamObserver {
	flusher, _ := w.(http.Flusher)
	return &streamObserver{w: w, flusher: flusher, pages: pages, markdown: markdown}
}

func (o *streamObserver) emit(name string, data any) {
	if err := o.pages.ExecuteTemplate(o.w, name, data); err != nil {
		logger.Warnf("[Web] 写出片段 %s 失败: %v", name, err)
		return
	}
	if o.flusher != nil {
		o.flusher.Flush()
	}
}

func (o *streamObserver) OnStage(stage pipeline.Stage) {
	switch stage {
	case pipeline.StageGeneratingPerspectives:
		o.emit("status", statusView{Label: "🔍 質問の観点を分析中...", State: "running"})
	case pipeline.StageSynthesizing:
		o.emit("collected", nil)
		o.emit("status", statusView{Label: "🧠 統括AIが最終回答を生成中...", State: "running"})
	}
}

func (o *streamObserver) OnPerspectives(perspectives []string) {
	o.emit("perspectives", perspectives)
}

func (o *streamObserver) OnPerspectiveStart(index int, perspective string) {
	o.emit("status", statusView{Label: fmt.Sprintf("🤖 エージェントが「%s」について回答を生成中...", perspective), State: "running"})
}

func (o *streamObserver) OnPerspectiveAnswer(index int, perspective, answer string) {
	o.emit("answer", answerView{Perspective: perspective, HTML: o.markdown(answer)})
}

func (o *streamObserver) OnFinalAnswer(answer string) {
	o.emit("status", statusView{Label: "✅ 最終回答が生成完了しました。", State: "complete"})
	o.emit("final", o.markdown(answer))
}

func (o *streamObserver) OnSaved(entry history.Entry) {
	o.emit("saved", entry)
}

func (o *streamObserver) OnFailed(err error) {
	if errors.Is(err, pipeline.ErrNoPerspectives) {
		o.emit("status", statusView{Label: "⚠️ 観点分析失敗", State: "error"})
	}
}
