package protocol

import (
	"context"
	"errors"
	"net"
	"net/textproto"
	"strconv"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"

	"neoftp/internal/core/lib/network/dialer"
	"neoftp/internal/core/model"
	"neoftp/internal/pkg/logger"
)

// closeGrace QUIT 的最长等待时间
const closeGrace = time.Second

// Transport FTP 客户端能力
type Transport interface {
	// Dial 建立控制连接并读取欢迎信息
	Dial(ctx context.Context, target model.Target) (Conn, error)
}

// Conn 一条已建立的 FTP 控制连接，不可并发使用
type Conn interface {
	// Welcome 服务端欢迎信息 (完整首个应答)
	Welcome() string
	// Login 成功时返回 230 应答文本，被拒绝时返回服务端应答作为 error
	Login(ctx context.Context, username, password string) (string, error)
	// List 发送 LIST，按服务端顺序返回原始行
	List(ctx context.Context, path string) ([]string, error)
	// Raw 发送一条命令，返回完整应答文本
	Raw(ctx context.Context, command string) (string, error)
	Close() error
}

// JlaffayeTransport 基于 github.com/jlaffaye/ftp 的实现
// 控制连接与数据连接都经由 Dialer 建立 (支持 SOCKS5)
type JlaffayeTransport struct {
	Dialer  dialer.Dialer
	Timeout time.Duration
}

func NewJlaffayeTransport(d dialer.Dialer, timeout time.Duration) *JlaffayeTransport {
	if d == nil {
		d = dialer.NewDefaultDialer(timeout)
	}
	return &JlaffayeTransport{Dialer: d, Timeout: timeout}
}

func (t *JlaffayeTransport) Dial(ctx context.Context, target model.Target) (Conn, error) {
	jc := &jlaffayeConn{
		dialer:  t.Dialer,
		timeout: t.Timeout,
		opCtx:   ctx,
	}
	stop := context.AfterFunc(ctx, jc.interrupt)
	defer stop()

	sc, err := ftp.Dial(target.Addr(),
		ftp.DialWithDialFunc(jc.dial),
		// 只用 PASV + LIST，保证拿到的是长格式原始行
		ftp.DialWithDisabledEPSV(true),
		ftp.DialWithDisabledMLSD(true),
	)
	if err != nil {
		return nil, err
	}
	jc.sc = sc

	control := jc.controlConn()
	replies := parseReplies(control.take())
	if len(replies) > 0 {
		jc.welcome = replies[0]
	}
	control.SetDeadline(time.Time{})

	logger.ForTarget("ftp", target.Host, target.Port).Debugf("control connection established, welcome=%q", jc.welcome)
	return jc, nil
}

type jlaffayeConn struct {
	dialer  dialer.Dialer
	timeout time.Duration
	sc      *ftp.ServerConn
	welcome string

	mu      sync.Mutex
	opCtx   context.Context
	control *tapConn
	data    *tapConn
}

// dial 作为 DialWithDialFunc 传给 jlaffaye/ftp
// 第一次调用建立控制连接，之后每次调用建立一条数据连接
func (c *jlaffayeConn) dial(network, address string) (net.Conn, error) {
	c.mu.Lock()
	ctx := c.opCtx
	c.mu.Unlock()

	raw, err := c.dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	tc := newTapConn(raw, address)
	tc.record()
	tc.SetDeadline(c.deadline(ctx))

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.control == nil {
		c.control = tc
	} else {
		c.data = tc
	}
	if ctx.Err() != nil {
		// 拨号期间 ctx 已结束，interrupt 可能错过了这条连接
		tc.SetDeadline(time.Unix(1, 0))
	}
	return tc, nil
}

func (c *jlaffayeConn) deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	if c.timeout > 0 {
		return time.Now().Add(c.timeout)
	}
	return time.Time{}
}

func (c *jlaffayeConn) controlConn() *tapConn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.control
}

// interrupt 让阻塞中的读写立即返回
func (c *jlaffayeConn) interrupt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	past := time.Unix(1, 0)
	if c.control != nil {
		c.control.SetDeadline(past)
	}
	if c.data != nil {
		c.data.SetDeadline(past)
	}
}

// begin 为一次操作设置超时与取消，返回的函数用于恢复
func (c *jlaffayeConn) begin(ctx context.Context) func() {
	c.mu.Lock()
	c.opCtx = ctx
	c.data = nil
	control := c.control
	c.mu.Unlock()

	control.SetDeadline(c.deadline(ctx))
	stop := context.AfterFunc(ctx, c.interrupt)
	return func() {
		stop()
		control.SetDeadline(time.Time{})
	}
}

func (c *jlaffayeConn) Welcome() string {
	return c.welcome
}

func (c *jlaffayeConn) Login(ctx context.Context, username, password string) (string, error) {
	end := c.begin(ctx)
	defer end()

	control := c.controlConn()
	control.record()
	err := c.sc.Login(username, password)
	recorded := control.take()

	// 230 之后的 FEAT/TYPE 失败不影响登录结果
	if reply, ok := findReply(recorded, strconv.Itoa(ftp.StatusLoggedIn)); ok {
		if err != nil {
			logger.Debugf("ftp post-login setup failed: %v", err)
		}
		return reply, nil
	}
	if err != nil {
		// jlaffaye 对 USER 阶段的拒绝只返回消息文本，这里换回带状态码的原始应答
		if reply, ok := lastErrorReply(recorded); ok {
			return "", errors.New(reply)
		}
		return "", err
	}
	return strconv.Itoa(ftp.StatusLoggedIn), nil
}

func (c *jlaffayeConn) List(ctx context.Context, path string) ([]string, error) {
	end := c.begin(ctx)
	defer end()

	if _, err := c.sc.List(path); err != nil {
		return nil, err
	}

	c.mu.Lock()
	data := c.data
	c.mu.Unlock()
	if data == nil {
		return nil, nil
	}
	return splitLines(data.take()), nil
}

func (c *jlaffayeConn) Raw(ctx context.Context, command string) (string, error) {
	end := c.begin(ctx)
	defer end()

	// 不关闭 tp，底层连接仍归 jlaffaye/ftp 管理
	tp := textproto.NewConn(c.controlConn())
	if err := tp.PrintfLine("%s", command); err != nil {
		return "", err
	}
	return readReply(&tp.Reader)
}

func (c *jlaffayeConn) Close() error {
	if control := c.controlConn(); control != nil {
		control.SetDeadline(time.Now().Add(closeGrace))
	}
	return c.sc.Quit()
}
