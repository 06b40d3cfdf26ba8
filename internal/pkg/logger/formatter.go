// 结构化日志辅助函数
package logger

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// LogType 日志类型枚举
type LogType string

const (
	// ScanLog 扫描日志 - 记录每个目标的探测过程
	ScanLog LogType = "scan"
	// StoreLog 存储日志 - 记录结果落库
	StoreLog LogType = "store"
	// SystemLog 系统日志 - 记录启动、配置等
	SystemLog LogType = "system"
)

// FormatTimestamp 格式化时间戳为统一的毫秒精度格式
func FormatTimestamp(t time.Time) string {
	return t.Format(timestampFormat)
}

// LogScanOperation 记录一次扫描操作
// status: running / completed / failed
func LogScanOperation(taskID, scanType, target, status, result string, duration time.Duration, extraFields map[string]interface{}) {
	fields := logrus.Fields{
		"type":      ScanLog,
		"task_id":   taskID,
		"scan_type": scanType,
		"target":    target,
		"status":    status,
		"result":    result,
		"duration":  duration.Milliseconds(),
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	entry := WithFields(fields)
	switch status {
	case "completed":
		entry.Info(fmt.Sprintf("Scan completed: %s on %s", scanType, target))
	case "failed":
		entry.Warn(fmt.Sprintf("Scan failed: %s on %s", scanType, target))
	default:
		entry.Debug(fmt.Sprintf("Scan %s: %s on %s", status, scanType, target))
	}
}

// LogStoreError 记录存储层错误
func LogStoreError(err error, operation string, extraFields map[string]interface{}) {
	fields := logrus.Fields{
		"type":      StoreLog,
		"operation": operation,
		"error":     err.Error(),
	}
	for k, v := range extraFields {
		fields[k] = v
	}
	WithFields(fields).Error("store operation failed")
}
