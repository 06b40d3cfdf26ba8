package protocol

import (
	"context"
	"errors"
	"fmt"

	"neoftp/internal/core/model"
	"neoftp/internal/core/scanner/brute"
)

var ErrNotConnected = errors.New("ftp control connection is not open")

// Lifecycle 管理一个目标的控制连接: 关闭 -> 打开 -> 关闭，可多次循环
type Lifecycle struct {
	transport Transport
	target    model.Target
	conn      Conn
	opens     int
}

func NewLifecycle(transport Transport, target model.Target) *Lifecycle {
	return &Lifecycle{transport: transport, target: target}
}

// Open 已打开时直接返回
// 失败返回包装了 brute.ErrConnectionFailed 的错误
func (l *Lifecycle) Open(ctx context.Context) error {
	if l.conn != nil {
		return nil
	}
	conn, err := l.transport.Dial(ctx, l.target)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", brute.ErrConnectionFailed, l.target.Addr(), err)
	}
	l.conn = conn
	l.opens++
	return nil
}

// Close 关闭当前连接，未打开时什么也不做
func (l *Lifecycle) Close() error {
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.conn = nil
	return err
}

// Ensure 返回可用连接，必要时重新打开
func (l *Lifecycle) Ensure(ctx context.Context) (Conn, error) {
	if err := l.Open(ctx); err != nil {
		return nil, err
	}
	return l.conn, nil
}

func (l *Lifecycle) Conn() (Conn, error) {
	if l.conn == nil {
		return nil, ErrNotConnected
	}
	return l.conn, nil
}

func (l *Lifecycle) IsOpen() bool {
	return l.conn != nil
}

// Opens 成功打开的次数
func (l *Lifecycle) Opens() int {
	return l.opens
}
