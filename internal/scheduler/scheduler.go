package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/fachebot/knowledge-hub/internal/history"
	"github.com/fachebot/knowledge-hub/internal/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler 按 cron 表达式定时清空历史记录，长期运行的服务也能保持"历史随重启清空"的语义
type Scheduler struct {
	cron    *cron.Cron
	store   history.Store
	spec    string
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	started bool
}

func NewScheduler(store history.Store, spec string) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		store: store,
		spec:  spec,
	}
}

// Start 启动调度器，spec 为空时不注册任务
func (s *Scheduler) Start() error {
	if s.spec == "" {
		logger.Infof("[Scheduler] 未配置 History.ResetCron，不启用定时清空")
		return nil
	}

	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.mu.Unlock()

	// 注册清空历史任务
	_, err := s.cron.AddFunc(s.spec, s.runHistoryReset)
	if err != nil {
		return fmt.Errorf("注册清空历史任务失败: %w", err)
	}

	s.cron.Start()
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	logger.Infof("[Scheduler] 调度器已启动，清空历史任务: %s", s.spec)
	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	started := s.started
	s.mu.Unlock()

	if !started {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Infof("[Scheduler] 调度器已停止")
}

// runHistoryReset 清空历史（cron 触发）
func (s *Scheduler) runHistoryReset() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		logger.Infof("[Scheduler] 任务已取消，退出")
		return
	default:
	}

	if err := s.store.Reset(ctx); err != nil {
		logger.Errorf("[Scheduler] 清空历史失败: %v", err)
		return
	}
	logger.Infof("[Scheduler] 历史记录已清空")
}
