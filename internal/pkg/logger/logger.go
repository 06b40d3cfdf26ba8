// 日志管理器
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"neoftp/internal/config"
)

// 时间戳格式，精确到毫秒
const timestampFormat = "2006-01-02 15:04:05.000"

// LoggerManager 日志管理器
type LoggerManager struct {
	logger *logrus.Logger
	config *config.LogConfig
}

// LoggerInstance 全局日志实例，InitLogger 之前为 nil
var LoggerInstance *LoggerManager

// InitLogger 创建日志管理器并设为全局实例
func InitLogger(cfg *config.LogConfig) (*LoggerManager, error) {
	lm, err := NewLoggerManager(cfg)
	if err != nil {
		return nil, err
	}
	LoggerInstance = lm
	return lm, nil
}

// NewLoggerManager 创建独立的 logrus 实例，不修改全局实例
func NewLoggerManager(cfg *config.LogConfig) (*LoggerManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("log config cannot be nil")
	}

	l := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
		l.Warnf("Invalid log level '%s', using 'info' as default", cfg.Level)
	}
	l.SetLevel(level)
	l.SetReportCaller(cfg.Caller)

	formatter, err := newFormatter(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to set log formatter: %w", err)
	}
	l.SetFormatter(formatter)

	out, err := newWriter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set log output: %w", err)
	}
	l.SetOutput(out)

	return &LoggerManager{logger: l, config: cfg}, nil
}

func newFormatter(format string) (logrus.Formatter, error) {
	switch strings.ToLower(format) {
	case "json":
		return &logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyMsg:   "message",
				logrus.FieldKeyFunc:  "function",
				logrus.FieldKeyFile:  "file",
			},
		}, nil
	case "text", "":
		return &logrus.TextFormatter{
			TimestampFormat: timestampFormat,
			FullTimestamp:   true,
		}, nil
	}
	return nil, fmt.Errorf("unsupported log format: %s", format)
}

// newWriter stdout 留给扫描结果表格，文件模式下 debug 日志同时写 stderr
func newWriter(cfg *config.LogConfig) (io.Writer, error) {
	switch strings.ToLower(cfg.Output) {
	case "stdout", "":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	case "file":
	default:
		return nil, fmt.Errorf("unsupported log output: %s", cfg.Output)
	}

	if cfg.FilePath == "" {
		return nil, fmt.Errorf("file path is required when output is file")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	if strings.EqualFold(cfg.Level, "debug") {
		return io.MultiWriter(os.Stderr, rotator), nil
	}
	return rotator, nil
}

// GetLogger 获取 logrus 实例
func (lm *LoggerManager) GetLogger() *logrus.Logger {
	return lm.logger
}

func Debugf(format string, args ...interface{}) {
	if LoggerInstance != nil {
		LoggerInstance.logger.Debugf(format, args...)
	}
}

// WithFields 未初始化时返回丢弃输出的 Entry，调用方无需判空
func WithFields(fields logrus.Fields) *logrus.Entry {
	if LoggerInstance != nil {
		return LoggerInstance.logger.WithFields(fields)
	}
	return logrus.NewEntry(discard).WithFields(fields)
}

// ForTarget 带 protocol/host/port 字段的扫描日志 Entry
func ForTarget(protocol, host string, port int) *logrus.Entry {
	return WithFields(logrus.Fields{
		"type":     ScanLog,
		"protocol": protocol,
		"host":     host,
		"port":     port,
	})
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()
