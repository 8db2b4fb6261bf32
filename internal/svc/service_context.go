package svc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fachebot/knowledge-hub/internal/agent"
	"github.com/fachebot/knowledge-hub/internal/config"
	"github.com/fachebot/knowledge-hub/internal/history"
	"github.com/fachebot/knowledge-hub/internal/llm"
	"github.com/fachebot/knowledge-hub/internal/logger"
	"github.com/fachebot/knowledge-hub/internal/pipeline"

	"golang.org/x/net/proxy"
)

type ServiceContext struct {
	Config       *config.Config
	HTTPClient   *http.Client
	LLMClient    llm.Generator
	HistoryStore history.Store
	Agent        *agent.Agent
	Orchestrator *pipeline.Orchestrator
}

type options struct {
	keepHistory bool
}

type Option func(*options)

// WithKeepHistory 启动时不清空历史记录
func WithKeepHistory() Option {
	return func(o *options) {
		o.keepHistory = true
	}
}

// NewServiceContext 创建全部依赖，默认在启动时清空历史记录
func NewServiceContext(ctx context.Context, c *config.Config, opts ...Option) (*ServiceContext, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// 创建SOCKS5代理
	httpClient, err := newHTTPClient(c.Sock5Proxy)
	if err != nil {
		return nil, err
	}

	llmClient, err := llm.NewGenerator(ctx, &c.LLM, httpClient)
	if err != nil {
		return nil, err
	}

	store, err := history.Open(c.History)
	if err != nil {
		return nil, err
	}
	if !o.keepHistory {
		if err := history.ResetOnBoot(ctx, store); err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	a, err := agent.NewAgent(llmClient)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	logger.Infof("[Svc] provider=%s, model=%s, history=%s(%s)", c.LLM.Provider, c.LLM.Model, c.History.Driver, c.History.Path)

	return &ServiceContext{
		Config:       c,
		HTTPClient:   httpClient,
		LLMClient:    llmClient,
		HistoryStore: store,
		Agent:        a,
		Orchestrator: pipeline.NewOrchestrator(a, store),
	}, nil
}

// newHTTPClient 未启用代理时返回 nil，由 SDK 使用默认客户端
func newHTTPClient(c config.Sock5Proxy) (*http.Client, error) {
	if !c.Enable {
		return nil, nil
	}

	socks5Proxy := fmt.Sprintf("%s:%d", c.Host, c.Port)
	dialer, err := proxy.SOCKS5("tcp", socks5Proxy, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("创建SOCKS5代理失败: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.Dial = dialer.Dial
	}
	return &http.Client{Transport: transport}, nil
}

func (svcCtx *ServiceContext) Close() {
	if err := svcCtx.HistoryStore.Close(); err != nil {
		logger.Errorf("关闭历史存储失败, %v", err)
	}
}
