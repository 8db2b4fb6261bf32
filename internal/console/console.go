package console

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/fachebot/knowledge-hub/internal/history"
	"github.com/fachebot/knowledge-hub/internal/logger"
	"github.com/fachebot/knowledge-hub/internal/pipeline"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
)

// Printer 把流水线各阶段输出到终端
type Printer struct {
	out      io.Writer
	renderer *glamour.TermRenderer
	quiet    bool
}

// NewPrinter 默认输出每个观点的完整回答，quiet 为 true 时只输出进度
func NewPrinter(out io.Writer, quiet bool) *Printer {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		logger.Warnf("[Console] 创建 Markdown 渲染器失败, 使用纯文本输出: %v", err)
	}
	return &Printer{out: out, renderer: renderer, quiet: quiet}
}

func (p *Printer) println(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}

// markdown 渲染失败时原样输出
func (p *Printer) markdown(text string) string {
	if p.renderer == nil {
		return text
	}
	out, err := p.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func (p *Printer) OnStage(stage pipeline.Stage) {
	switch stage {
	case pipeline.StageGeneratingPerspectives:
		p.println(runningStyle.Render("🔍 質問の観点を分析中..."))
	case pipeline.StageSynthesizing:
		p.println(doneStyle.Render("🎉 全ての情報収集が完了しました。統括AIが最終回答を生成します！"))
		p.println(runningStyle.Render("🧠 統括AIが最終回答を生成中..."))
	}
}

func (p *Printer) OnPerspectives(perspectives []string) {
	p.println(doneStyle.Render("✅ 観点分析が完了しました。"))
	p.println(labelStyle.Render("特定された観点: ") + strings.Join(perspectives, ", "))
}

func (p *Printer) OnPerspectiveStart(index int, perspective string) {
	p.println(runningStyle.Render(fmt.Sprintf("🤖 エージェントが「%s」について回答を生成中...", perspective)))
}

func (p *Printer) OnPerspectiveAnswer(index int, perspective, answer string) {
	p.println(doneStyle.Render(fmt.Sprintf("✅ 「%s」回答が完了しました。", perspective)))
	if !p.quiet {
		p.println(p.markdown(answer))
	}
}

func (p *Printer) OnFinalAnswer(answer string) {
	p.println("")
	p.println(titleStyle.Render("💡 最終回答"))
	p.println(p.markdown(answer))
}

func (p *Printer) OnSaved(entry history.Entry) {
	p.println(doneStyle.Render("💾 履歴に保存しました！"))
}

func (p *Printer) OnFailed(err error) {
	if errors.Is(err, pipeline.ErrNoPerspectives) {
		p.println(errorStyle.Render("⚠️ 観点分析失敗"))
	}
}

// PrintError 输出 Run 返回的错误
func (p *Printer) PrintError(err error) {
	message, hint := pipeline.UserMessage(err)
	p.println(errorStyle.Render(message))
	if hint != "" {
		p.println(hintStyle.Render(hint))
	}
}
