package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fachebot/knowledge-hub/internal/agent"
	"github.com/fachebot/knowledge-hub/internal/config"
	"github.com/fachebot/knowledge-hub/internal/history"
	"github.com/fachebot/knowledge-hub/internal/logger"
	"github.com/fachebot/knowledge-hub/internal/pipeline"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html
var templateFS embed.FS

// 每行模板按钮数
const buttonsPerRow = 3

// questionRunner 执行一次问答（便于测试注入 mock）
type questionRunner interface {
	Run(ctx context.Context, question string, obs pipeline.Observer) (*pipeline.Result, error)
}

type Server struct {
	runner    questionRunner
	store     history.Store
	templates []config.QuestionTemplate
	pages     *template.Template
	markdown  goldmark.Markdown
}

func New(runner questionRunner, store history.Store, templates []config.QuestionTemplate) (*Server, error) {
	if runner == nil {
		return nil, errors.New("question runner required")
	}
	if store == nil {
		return nil, errors.New("history store required")
	}

	pages, err := template.New("page").
		Funcs(template.FuncMap{"join": func(items []string) string { return strings.Join(items, ", ") }}).
		ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Server{
		runner:    runner,
		store:     store,
		templates: templates,
		pages:     pages,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("POST /api/ask", s.handleAskAPI)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return logMiddleware(mux)
}

// --- Page ---

type templateButton struct {
	Index int
	Name  string
}

type historyButton struct {
	Index int
	Entry history.Entry
}

type pageData struct {
	Question     string
	TemplateRows [][]templateButton
	History      []historyButton
}

func (s *Server) buildPage(ctx context.Context, question string) pageData {
	data := pageData{Question: question}

	for i := 0; i < len(s.templates); i += buttonsPerRow {
		end := min(i+buttonsPerRow, len(s.templates))
		row := make([]templateButton, 0, end-i)
		for j := i; j < end; j++ {
			row = append(row, templateButton{Index: j, Name: s.templates[j].Name})
		}
		data.TemplateRows = append(data.TemplateRows, row)
	}

	entries := s.loadHistory(ctx)
	for i, e := range entries {
		data.History = append(data.History, historyButton{Index: i, Entry: e})
	}
	return data
}

func (s *Server) loadHistory(ctx context.Context) []history.Entry {
	entries, err := s.store.Load(ctx)
	if err != nil {
		logger.Errorf("[Web] 读取历史失败: %v", err)
		return nil
	}
	return entries
}

// prefill 根据 ?template= 或 ?history= 预填问题
func (s *Server) prefill(r *http.Request) string {
	q := r.URL.Query()
	if v := q.Get("template"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 && i < len(s.templates) {
			return s.templates[i].Text
		}
	}
	if v := q.Get("history"); v != "" {
		entries := s.loadHistory(r.Context())
		if i, err := strconv.Atoi(v); err == nil && i >= 0 && i < len(entries) {
			return entries[i].Question
		}
	}
	return ""
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := s.buildPage(r.Context(), s.prefill(r))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.ExecuteTemplate(w, "header", data); err != nil {
		logger.Errorf("[Web] 渲染页面失败: %v", err)
		return
	}
	_ = s.pages.ExecuteTemplate(w, "footer", nil)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	question := r.PostFormValue("question")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Accel-Buffering", "no")
	if err := s.pages.ExecuteTemplate(w, "header", s.buildPage(r.Context(), question)); err != nil {
		logger.Errorf("[Web] 渲染页面失败: %v", err)
		return
	}

	obs := newStreamObserver(w, s.pages, s.renderMarkdown)
	_, err := s.runner.Run(r.Context(), question, obs)
	if err != nil {
		message, hint := pipeline.UserMessage(err)
		if errors.Is(err, pipeline.ErrEmptyQuestion) {
			obs.emit("error", errorView{Message: message, Class: "warning"})
		} else {
			obs.emit("error", errorView{Message: message, Hint: hint})
		}
	}
	obs.emit("footer", nil)
}

// renderMarkdown 把模型输出的 Markdown 转为 HTML，原始 HTML 会被过滤
func (s *Server) renderMarkdown(text string) template.HTML {
	var sb strings.Builder
	if err := s.markdown.Convert([]byte(text), &sb); err != nil {
		logger.Warnf("[Web] Markdown 渲染失败: %v", err)
		return template.HTML("<pre>" + template.HTMLEscapeString(text) + "</pre>")
	}
	return template.HTML(sb.String())
}

// --- JSON API ---

type askReq struct {
	Question string `json:"question"`
}

type askResp struct {
	Question     string                    `json:"question"`
	Perspectives []string                  `json:"perspectives"`
	Answers      []agent.PerspectiveAnswer `json:"answers"`
	FinalAnswer  string                    `json:"final_answer"`
	Saved        bool                      `json:"saved"`
	Entry        *history.Entry            `json:"entry,omitempty"`
}

type errorResp struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries := s.loadHistory(r.Context())
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAskAPI(w http.ResponseWriter, r *http.Request) {
	var req askReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}

	result, err := s.runner.Run(r.Context(), req.Question, nil)
	if err != nil {
		message, hint := pipeline.UserMessage(err)
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, pipeline.ErrEmptyQuestion):
			status = http.StatusBadRequest
		case errors.Is(err, pipeline.ErrNoPerspectives):
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, errorResp{Error: message, Hint: hint})
		return
	}

	resp := askResp{
		Question:     result.Question,
		Perspectives: result.Perspectives,
		Answers:      result.Answers,
		FinalAnswer:  result.FinalAnswer,
		Saved:        result.Saved,
	}
	if result.Saved {
		resp.Entry = &result.Entry
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// statusRecorder 记录状态码，同时保留 Flusher 以支持流式输出
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debugf("[Web] %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
