package agent

import (
	"fmt"
	"strings"
	"unicode"
)

const perspectivePromptFormat = `質問: %s

上記の質問に対し、回答に含めるべき**観点**を3〜5つ、箇条書きで提案してください。観点のみを列挙し、説明は不要です。

例:
- 定義
- メリット
- デメリット
- 具体例
- 注意点
`

const answerPromptFormat = `以下の質問と観点に基づいて、具体的な情報を提供してください。

質問: %s
観点: %s

この観点に特化して、簡潔かつ分かりやすく回答してください。
`

const synthesisPromptFormat = `ユーザーからの元の質問:
「%s」

以下の各エージェントが提供した情報を総合的に考慮し、元の質問に対する最終的で詳細な回答を作成してください。
各観点からの情報を統合し、論理的で分かりやすい文章でまとめてください。

--- 各エージェントからの情報 ---
%s
---

最終的な回答:
`

// BuildPerspectivePrompt 生成"列出观点"的提示词
func BuildPerspectivePrompt(question string) string {
	return fmt.Sprintf(perspectivePromptFormat, question)
}

// BuildAnswerPrompt 生成针对单个观点回答的提示词
func BuildAnswerPrompt(question, perspective string) string {
	return fmt.Sprintf(answerPromptFormat, question, perspective)
}

// BuildSynthesisPrompt 生成汇总提示词
func BuildSynthesisPrompt(question string, answers *PerspectiveAnswers) string {
	return fmt.Sprintf(synthesisPromptFormat, question, FormatPerspectiveSections(answers))
}

// FormatPerspectiveSections 每个观点一段 "**<观点>に関する情報:**\n<回答>"，段落间空一行
func FormatPerspectiveSections(answers *PerspectiveAnswers) string {
	items := answers.Items()
	sections := make([]string, len(items))
	for i, item := range items {
		sections[i] = fmt.Sprintf("**%sに関する情報:**\n%s", item.Perspective, item.Answer)
	}
	return strings.Join(sections, "\n\n")
}

// ParsePerspectives 把模型返回的列表文本解析为观点
// 按行拆分，去掉行首的 "-" 与空白、行尾空白，丢弃空行，保持原有顺序
func ParsePerspectives(raw string) []string {
	lines := strings.Split(raw, "\n")
	perspectives := make([]string, 0, len(lines))
	for _, line := range lines {
		p := strings.TrimLeftFunc(line, func(r rune) bool {
			return r == '-' || unicode.IsSpace(r)
		})
		p = strings.TrimRightFunc(p, unicode.IsSpace)
		if p == "" {
			continue
		}
		perspectives = append(perspectives, p)
	}
	return perspectives
}
