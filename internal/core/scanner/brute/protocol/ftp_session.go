package protocol

import (
	"context"
	"fmt"
	"strings"
	"time"

	"neoftp/internal/core/model"
	"neoftp/internal/core/reporter"
	"neoftp/internal/core/scanner/brute"
	"neoftp/internal/pkg/logger"
	"neoftp/internal/store"
)

const (
	loggedInMarker  = "230"
	anonymousMarker = "- Anonymous Login!"
)

// Options 会话行为开关
type Options struct {
	ListDirectory     bool          // 登录成功后列目录
	ContinueOnSuccess bool          // 成功后调度方继续提供凭据
	ProbeCommands     bool          // 抓取 banner 后发送 HELP
	Timeout           time.Duration // 单次连接/登录/列目录超时
}

// FtpSession 一个 FTP 目标的会话
//
// 状态: 未连接 -> 已连接(未认证) -> 认证成功 -> (列目录) -> 关闭
// 认证失败同样关闭，下一次 Authenticate 前自动重连。每次尝试结束都会关闭连接。
type FtpSession struct {
	target model.Target
	life   *Lifecycle
	opts   Options

	sink   store.Sink
	report reporter.Reporter
	redact reporter.Redactor

	banner         string
	bannerCaptured bool
}

// NewFtpSession sink 为 nil 时不落库；report/redact 为 nil 时分别不输出、不打码
func NewFtpSession(target model.Target, transport Transport, opts Options, sink store.Sink, report reporter.Reporter, redact reporter.Redactor) *FtpSession {
	if report == nil {
		report = reporter.NopReporter{}
	}
	if redact == nil {
		redact = reporter.PlainRedactor
	}
	return &FtpSession{
		target: target,
		life:   NewLifecycle(transport, target),
		opts:   opts,
		sink:   sink,
		report: report,
		redact: redact,
	}
}

func (s *FtpSession) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout > 0 {
		return context.WithTimeout(ctx, s.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

// Connect 打开控制连接，首次连接成功后立即抓取 banner
func (s *FtpSession) Connect(ctx context.Context) error {
	cctx, cancel := s.withTimeout(ctx)
	defer cancel()

	conn, err := s.life.Ensure(cctx)
	if err != nil {
		s.report.Debug(fmt.Sprintf("Error connecting to FTP host: %v", err))
		return err
	}
	if !s.bannerCaptured {
		s.captureBanner(conn)
		if s.opts.ProbeCommands {
			s.probeCommands(cctx)
		}
	}
	return nil
}

// captureBanner 每个会话只执行一次
func (s *FtpSession) captureBanner(conn Conn) {
	welcome := conn.Welcome()
	banner, err := ParseBanner(welcome)
	if err != nil {
		s.report.Debug(fmt.Sprintf("%v, using raw welcome %q", err, welcome))
	}
	s.banner = banner
	s.bannerCaptured = true
	s.report.Display("Banner: " + banner)
}

func (s *FtpSession) probeCommands(ctx context.Context) {
	cmds, err := s.SupportedCommands(ctx)
	if err != nil {
		s.report.Debug(fmt.Sprintf("HELP failed: %v", err))
		return
	}
	s.report.Debug("Supported commands: " + strings.Join(cmds, " "))
}

// Fingerprint 返回 banner，未连接过时先连接
func (s *FtpSession) Fingerprint(ctx context.Context) (string, error) {
	if !s.bannerCaptured {
		if err := s.Connect(ctx); err != nil {
			return "", err
		}
	}
	return s.banner, nil
}

// Banner 已抓取的 banner
func (s *FtpSession) Banner() string {
	return s.banner
}

// Authenticate 验证单个凭据
// 登录被拒绝或登录过程中的传输错误都转为 AuthFailure，只有重连失败返回 error
func (s *FtpSession) Authenticate(ctx context.Context, auth brute.Auth) (brute.AuthResult, error) {
	if !s.life.IsOpen() {
		if err := s.Connect(ctx); err != nil {
			return brute.AuthResult{Outcome: brute.AuthFailure, Response: err.Error()}, err
		}
	}
	// 每次尝试结束都关闭，下一次尝试由 Connect 重新建立
	defer s.life.Close()

	conn, err := s.life.Conn()
	if err != nil {
		return brute.AuthResult{Outcome: brute.AuthFailure, Response: err.Error()}, err
	}

	actx, cancel := s.withTimeout(ctx)
	resp, err := conn.Login(actx, auth.Username, auth.Password)
	cancel()

	if err != nil {
		return s.fail(auth, err.Error(), fmt.Errorf("%w: %v", brute.ErrAuthFailed, err)), nil
	}
	if !strings.Contains(resp, loggedInMarker) {
		return s.fail(auth, resp, fmt.Errorf("%w: unexpected login reply %q", brute.ErrProtocolError, resp)), nil
	}

	if err := s.persist(ctx, auth); err != nil {
		logger.LogStoreError(err, "ftp_login_success", map[string]interface{}{
			"host":     s.target.Host,
			"port":     s.target.Port,
			"username": auth.Username,
		})
	}

	res := brute.AuthResult{
		Outcome:   brute.AuthSuccess,
		Response:  resp,
		Anonymous: isAnonymous(auth),
		Continue:  s.opts.ContinueOnSuccess,
	}
	if res.Anonymous {
		s.report.Success(fmt.Sprintf("%s:%s", auth.Username, s.redact(auth.Password)), anonymousMarker)
	} else {
		s.report.Success(fmt.Sprintf("%s:%s", auth.Username, s.redact(auth.Password)))
	}

	if s.opts.ListDirectory {
		lines, err := s.ListDirectory(ctx)
		if err != nil {
			s.report.Debug(fmt.Sprintf("Error listing directory: %v", err))
		} else {
			s.report.Display("Directory Listing")
			for _, line := range lines {
				s.report.Highlight(line)
			}
			res.Listing = lines
		}
	}
	return res, nil
}

func (s *FtpSession) fail(auth brute.Auth, response string, cause error) brute.AuthResult {
	s.life.Close()
	logger.ForTarget("ftp", s.target.Host, s.target.Port).WithError(cause).Debug("login rejected")
	s.report.Fail(fmt.Sprintf("%s:%s (Response:%s)", auth.Username, s.redact(auth.Password), response))
	return brute.AuthResult{Outcome: brute.AuthFailure, Response: response, Continue: true}
}

// persist 写入主机、凭据与登录关系，sink 支持事务时在同一事务内完成
func (s *FtpSession) persist(ctx context.Context, auth brute.Auth) error {
	if s.sink == nil {
		return nil
	}
	write := func(sink store.Sink) error {
		if err := sink.AddHost(ctx, s.target.Host, s.target.Port, s.banner); err != nil {
			return fmt.Errorf("add host: %w", err)
		}
		credID, err := sink.AddCredential(ctx, auth.Username, auth.Password)
		if err != nil {
			return fmt.Errorf("add credential: %w", err)
		}
		hostID, err := sink.GetHostID(ctx, s.target.Host, s.target.Port)
		if err != nil {
			return fmt.Errorf("get host id: %w", err)
		}
		if err := sink.AddLoginRelation(ctx, credID, hostID); err != nil {
			return fmt.Errorf("add login relation: %w", err)
		}
		return nil
	}
	if tx, ok := s.sink.(store.Transactional); ok {
		return tx.WithTx(ctx, write)
	}
	return write(s.sink)
}

// ListDirectory 在已认证的连接上执行 LIST，按服务端顺序返回原始行
func (s *FtpSession) ListDirectory(ctx context.Context) ([]string, error) {
	conn, err := s.life.Conn()
	if err != nil {
		return nil, err
	}
	lctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return conn.List(lctx, "")
}

// SupportedCommands 发送 HELP，去掉首尾两行后按空白切分
func (s *FtpSession) SupportedCommands(ctx context.Context) ([]string, error) {
	conn, err := s.life.Conn()
	if err != nil {
		return nil, err
	}
	hctx, cancel := s.withTimeout(ctx)
	defer cancel()
	resp, err := conn.Raw(hctx, "HELP")
	if err != nil {
		return nil, err
	}
	lines := strings.Split(resp, "\n")
	if len(lines) <= 2 {
		return []string{}, nil
	}
	cmds := []string{}
	for _, line := range lines[1 : len(lines)-1] {
		cmds = append(cmds, strings.Fields(line)...)
	}
	return cmds, nil
}

func (s *FtpSession) Close() error {
	return s.life.Close()
}

func isAnonymous(auth brute.Auth) bool {
	return (auth.Username == "" || auth.Username == "anonymous") &&
		(auth.Password == "" || auth.Password == "-")
}
