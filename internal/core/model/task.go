/**
 * 任务模型定义 (Core Domain)
 * @author: Sun977
 * @date: 2026.02.10
 * @description: CLI 与扫描器之间的通用任务结构
 */

package model

import (
	"time"

	"github.com/google/uuid"
)

// TaskType 定义任务类型
type TaskType string

const (
	TaskTypeBrute TaskType = "brute" // 凭据验证
)

// TaskStatus 定义任务状态
type TaskStatus string

const (
	TaskStatusSuccess   TaskStatus = "success"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Task 核心任务结构体
type Task struct {
	ID        string                 `json:"id"`
	Type      TaskType               `json:"type"`
	Targets   []string               `json:"targets"`              // 扫描目标 (IP/域名)
	PortRange string                 `json:"port_range,omitempty"` // 端口列表 (e.g. "21,2121")
	Params    map[string]interface{} `json:"params,omitempty"`     // 任务特定参数
	CreatedAt time.Time              `json:"created_at"`
}

// TaskResult 任务执行结果
type TaskResult struct {
	TaskID      string      `json:"task_id"`
	Status      TaskStatus  `json:"status"`
	Result      interface{} `json:"result"`
	Error       string      `json:"error,omitempty"`
	ExecutedAt  time.Time   `json:"executed_at"`
	CompletedAt time.Time   `json:"completed_at"`
}

// NewTask 创建一个新任务
func NewTask(taskType TaskType, targets ...string) *Task {
	return &Task{
		ID:        uuid.NewString(),
		Type:      taskType,
		Targets:   targets,
		CreatedAt: time.Now(),
		Params:    make(map[string]interface{}),
	}
}
