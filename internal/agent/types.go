package agent

import "fmt"

// PerspectiveAnswer 单个观点及其回答
type PerspectiveAnswer struct {
	Perspective string `json:"perspective"`
	Answer      string `json:"answer"`
}

// PerspectiveAnswers 按插入顺序保存 观点 -> 回答
// 同名观点不会覆盖前一条，而是追加 " (2)"、" (3)" 后缀
type PerspectiveAnswers struct {
	items []PerspectiveAnswer
	index map[string]int
}

func NewPerspectiveAnswers() *PerspectiveAnswers {
	return &PerspectiveAnswers{index: make(map[string]int)}
}

// Add 追加一条回答，返回实际使用的键
func (p *PerspectiveAnswers) Add(perspective, answer string) string {
	if p.index == nil {
		p.index = make(map[string]int)
	}

	key := perspective
	for n := 2; ; n++ {
		if _, exists := p.index[key]; !exists {
			break
		}
		key = fmt.Sprintf("%s (%d)", perspective, n)
	}

	p.index[key] = len(p.items)
	p.items = append(p.items, PerspectiveAnswer{Perspective: key, Answer: answer})
	return key
}

// Get 按键查询回答
func (p *PerspectiveAnswers) Get(perspective string) (string, bool) {
	if p == nil {
		return "", false
	}
	i, ok := p.index[perspective]
	if !ok {
		return "", false
	}
	return p.items[i].Answer, true
}

// Items 返回插入顺序的副本
func (p *PerspectiveAnswers) Items() []PerspectiveAnswer {
	if p == nil {
		return nil
	}
	out := make([]PerspectiveAnswer, len(p.items))
	copy(out, p.items)
	return out
}

func (p *PerspectiveAnswers) Len() int {
	if p == nil {
		return 0
	}
	return len(p.items)
}
