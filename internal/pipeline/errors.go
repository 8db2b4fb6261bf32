package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuestion 问题为空，未发起任何模型调用
	ErrEmptyQuestion = errors.New("質問内容を入力してください。")
	// ErrNoPerspectives 模型没有返回可用的观点
	ErrNoPerspectives = errors.New("質問から有効な観点を生成できませんでした。質問を具体的にしてください。")
)

// ModelHint 模型调用失败时给用户的排查提示
const ModelHint = "APIキーが正しく設定されているか、インターネット接続を確認してください。またはモデルへのリクエストが多すぎる可能性があります。"

// ModelError 任一阶段的模型调用失败，不区分原因
type ModelError struct {
	Stage Stage
	Err   error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("%s 阶段失败: %v", e.Stage, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// UserMessage 展示给用户的错误文本
func (e *ModelError) UserMessage() string {
	return fmt.Sprintf("エラーが発生しました: %v", e.Err)
}
