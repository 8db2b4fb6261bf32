package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fachebot/knowledge-hub/internal/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	*logrus.Logger
	fileLogger *logrus.Logger
}

var (
	defaultLogger *Logger
	mu            sync.RWMutex
)

func init() {
	// 未调用 Setup 前只输出到控制台
	fileLogger := logrus.New()
	fileLogger.SetOutput(io.Discard)

	defaultLogger = &Logger{
		Logger:     newConsoleLogger(logrus.DebugLevel),
		fileLogger: fileLogger,
	}
}

func newConsoleLogger(level logrus.Level) *logrus.Logger {
	consoleLogger := logrus.New()
	consoleLogger.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	consoleLogger.SetOutput(os.Stdout)
	consoleLogger.SetLevel(level)
	return consoleLogger
}

// Setup 按配置初始化控制台日志和滚动文件日志
func Setup(c config.Log) {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		level = logrus.DebugLevel
	}

	consoleLogger := newConsoleLogger(level)

	// 文件日志配置
	fileLogger := logrus.New()
	fileLogger.SetFormatter(&logrus.JSONFormatter{
		PrettyPrint:     false,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	fileLogger.SetLevel(logrus.InfoLevel)

	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		consoleLogger.Errorf("无法创建日志目录: %v", err)
		fileLogger.SetOutput(io.Discard)
	} else {
		// 使用lumberjack进行日志轮转
		fileLogger.SetOutput(&lumberjack.Logger{
			Filename:   filepath.Join(c.Dir, c.FileName),
			MaxSize:    10,
			MaxBackups: 10,
			MaxAge:     30,
			Compress:   true,
		})
	}

	mu.Lock()
	defaultLogger = &Logger{
		Logger:     consoleLogger,
		fileLogger: fileLogger,
	}
	mu.Unlock()
}

// SetConsoleOutput 替换控制台输出，CLI 模式下用于把日志移到 stderr
func SetConsoleOutput(w io.Writer) {
	get().Logger.SetOutput(w)
}

func get() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

func Infof(format string, args ...any) {
	l := get()
	l.Logger.Infof(format, args...)
	l.fileLogger.Infof(format, args...)
}

func Warnf(format string, args ...any) {
	l := get()
	l.Logger.Warnf(format, args...)
	l.fileLogger.Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	l := get()
	l.Logger.Errorf(format, args...)
	l.fileLogger.Errorf(format, args...)
}

func Fatalf(format string, args ...any) {
	l := get()
	l.fileLogger.Errorf(format, args...)
	l.Logger.Fatalf(format, args...)
}

func Debugf(format string, args ...any) {
	l := get()
	l.Logger.Debugf(format, args...)
	l.fileLogger.Debugf(format, args...)
}
