package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fachebot/knowledge-hub/internal/config"
	"github.com/fachebot/knowledge-hub/internal/console"
	"github.com/fachebot/knowledge-hub/internal/logger"
	"github.com/fachebot/knowledge-hub/internal/scheduler"
	"github.com/fachebot/knowledge-hub/internal/svc"
	"github.com/fachebot/knowledge-hub/internal/web"

	"github.com/spf13/cobra"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "knowledge-hub",
		Short:         "AIナレッジハブ: 多角的な観点から質問に回答します",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "file", "f", "etc/config.yaml", "the config file")
	rootCmd.AddCommand(newServeCmd(), newAskCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	c, err := config.LoadFromFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败, %w", err)
	}
	logger.Setup(c.Log)
	return c, nil
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 Web 界面",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				c.Server.Addr = addr
			}
			return serve(c)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "http listen address (overrides Server.Addr)")
	return cmd
}

func serve(c *config.Config) error {
	// 创建服务上下文
	svcCtx, err := svc.NewServiceContext(context.Background(), c)
	if err != nil {
		return err
	}
	defer svcCtx.Close()

	srv, err := web.New(svcCtx.Orchestrator, svcCtx.HistoryStore, c.Templates)
	if err != nil {
		return err
	}

	// 定时清空历史
	schedulerInstance := scheduler.NewScheduler(svcCtx.HistoryStore, c.History.ResetCron)
	if err := schedulerInstance.Start(); err != nil {
		return err
	}
	defer schedulerInstance.Stop()

	httpServer := &http.Server{
		Addr:              c.Server.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("[Web] 服务启动, 监听 %s", c.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	// 等待程序退出
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ch:
	}

	// 优雅关闭
	logger.Infof("正在关闭服务...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("[Web] 关闭失败, %v", err)
	}
	logger.Infof("服务已停止")
	return nil
}

func newAskCmd() *cobra.Command {
	var (
		templateIndex int
		quiet         bool
	)
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "在终端中提问",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			logger.SetConsoleOutput(os.Stderr)

			question := strings.Join(args, " ")
			if templateIndex >= 0 {
				if templateIndex >= len(c.Templates) {
					return fmt.Errorf("模板序号超出范围: %d (共 %d 个)", templateIndex, len(c.Templates))
				}
				question = c.Templates[templateIndex].Text
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// 单次提问不清空历史，避免影响正在运行的 serve
			svcCtx, err := svc.NewServiceContext(ctx, c, svc.WithKeepHistory())
			if err != nil {
				return err
			}
			defer svcCtx.Close()

			printer := console.NewPrinter(cmd.OutOrStdout(), quiet)
			if _, err := svcCtx.Orchestrator.Run(ctx, question, printer); err != nil {
				printer.PrintError(err)
				return errors.New("回答生成に失敗しました")
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&templateIndex, "template", "t", -1, "use the built-in question template with this index")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print progress only, without each perspective answer")
	return cmd
}
