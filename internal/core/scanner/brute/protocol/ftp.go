package protocol

import (
	"neoftp/internal/core/model"
	"neoftp/internal/core/reporter"
	"neoftp/internal/core/scanner/brute"
	"neoftp/internal/store"
)

// ReporterFor 为目标创建 Reporter
type ReporterFor func(target model.Target) reporter.Reporter

// FTPFactory FTP 会话工厂，实现 brute.SessionFactory
type FTPFactory struct {
	transport Transport
	opts      Options
	sink      store.Sink
	reporters ReporterFor
	redact    reporter.Redactor
}

func NewFTPFactory(transport Transport, opts Options, sink store.Sink, reporters ReporterFor, redact reporter.Redactor) *FTPFactory {
	return &FTPFactory{
		transport: transport,
		opts:      opts,
		sink:      sink,
		reporters: reporters,
		redact:    redact,
	}
}

func (f *FTPFactory) Name() string {
	return "ftp"
}

func (f *FTPFactory) NewSession(target model.Target) brute.Session {
	var rep reporter.Reporter
	if f.reporters != nil {
		rep = f.reporters(target)
	}
	return NewFtpSession(target, f.transport, f.opts, f.sink, rep, f.redact)
}
