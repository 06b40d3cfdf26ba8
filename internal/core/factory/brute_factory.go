package factory

import (
	"fmt"

	"neoftp/internal/config"
	"neoftp/internal/core/lib/network/dialer"
	"neoftp/internal/core/lib/network/qos"
	"neoftp/internal/core/model"
	"neoftp/internal/core/reporter"
	"neoftp/internal/core/scanner/brute"
	"neoftp/internal/core/scanner/brute/protocol"
	"neoftp/internal/pkg/logger"
	"neoftp/internal/store"
)

// NewFTPBruteScanner 按配置组装 FTP 凭据验证扫描器
// 所有入口 (CLI、测试) 通过这里获得一致的拨号、脱敏与并发设置
func NewFTPBruteScanner(cfg *config.Config, sink store.Sink, console *reporter.Console) (*brute.BruteScanner, error) {
	if cfg == nil || cfg.FTP == nil || cfg.Output == nil {
		return nil, fmt.Errorf("ftp and output config are required")
	}

	d, err := dialer.New(cfg.FTP.Proxy, cfg.FTP.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create dialer: %w", err)
	}
	logger.Debugf("ftp dialer: %v, timeout %s", d, cfg.FTP.Timeout)

	redact := reporter.NewAuditRedactor(cfg.Output.AuditMode, cfg.Output.RevealChars)

	var reporters protocol.ReporterFor
	if console != nil {
		reporters = func(t model.Target) reporter.Reporter {
			return console.For("FTP", t)
		}
	}

	ftpFactory := protocol.NewFTPFactory(
		protocol.NewJlaffayeTransport(d, cfg.FTP.Timeout),
		protocol.Options{
			ListDirectory:     cfg.FTP.ListDirectory,
			ContinueOnSuccess: cfg.FTP.ContinueOnSuccess,
			ProbeCommands:     cfg.FTP.ProbeCommands,
			Timeout:           cfg.FTP.Timeout,
		},
		sink,
		reporters,
		redact,
	)

	cc := cfg.FTP.Concurrency
	s := brute.NewBruteScanner(qos.NewAdaptiveLimiter(cc.Initial, cc.Min, cc.Max))
	s.SetRedactor(redact)
	s.RegisterFactory(ftpFactory)
	return s, nil
}
