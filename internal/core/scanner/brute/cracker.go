package brute

import (
	"context"
	"errors"

	"neoftp/internal/core/model"
)

// Auth 单次凭据尝试 (不落库，只被一次 Authenticate 消费)
type Auth struct {
	Username string
	Password string
}

// AuthOutcome 认证结果
type AuthOutcome int

const (
	AuthFailure AuthOutcome = iota
	AuthSuccess
)

func (o AuthOutcome) String() string {
	if o == AuthSuccess {
		return "success"
	}
	return "failure"
}

// AuthResult 一次认证尝试的结果
// 登录被拒绝不是 error，而是 Outcome == AuthFailure
type AuthResult struct {
	Outcome   AuthOutcome
	Response  string   // 服务端响应或传输错误文本
	Anonymous bool     // 匿名登录成功
	Listing   []string // 请求列目录时的原始行
	// Continue 为 true 表示调度方可以继续为该主机提供后续凭据
	Continue bool
}

func (r AuthResult) Succeeded() bool {
	return r.Outcome == AuthSuccess
}

// Session 单个目标主机的协议会话
// 同一个 Session 上的方法不可并发调用
type Session interface {
	// Connect 建立控制连接，失败返回 ErrConnectionFailed
	Connect(ctx context.Context) error
	// Fingerprint 读取欢迎信息，每个会话只解析一次
	Fingerprint(ctx context.Context) (string, error)
	// Authenticate 验证单个凭据，连接已关闭时会先重连
	// 只有重连失败才返回 error
	Authenticate(ctx context.Context, auth Auth) (AuthResult, error)
	// Close 关闭当前连接，可重复调用
	Close() error
}

// SessionFactory 协议适配器，为每个目标创建会话
type SessionFactory interface {
	// Name 返回协议名称 (e.g. "ftp")
	Name() string
	NewSession(target model.Target) Session
}

var (
	// ErrAuthFailed 认证失败 (账号密码错误)
	ErrAuthFailed = errors.New("auth failed")

	// ErrConnectionFailed 连接失败 (超时/拒绝/重置)，该主机不再继续探测
	ErrConnectionFailed = errors.New("connection failed")

	// ErrProtocolError 协议交互错误 (如非预期响应)
	ErrProtocolError = errors.New("protocol error")
)
