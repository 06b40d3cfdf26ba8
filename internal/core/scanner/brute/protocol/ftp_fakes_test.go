package protocol

import (
	"context"
	"errors"
	"net/textproto"
	"strings"
	"sync"

	"neoftp/internal/core/model"
	"neoftp/internal/store"
)

// recordingReporter 记录所有输出，Success 的高亮标记用 << >> 包裹后追加
type recordingReporter struct {
	mu      sync.Mutex
	entries []reportEntry
}

type reportEntry struct {
	kind string
	text string
}

func (r *recordingReporter) add(kind, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, reportEntry{kind, text})
}

func (r *recordingReporter) Debug(text string)     { r.add("debug", text) }
func (r *recordingReporter) Display(text string)   { r.add("display", text) }
func (r *recordingReporter) Fail(text string)      { r.add("fail", text) }
func (r *recordingReporter) Highlight(text string) { r.add("highlight", text) }

func (r *recordingReporter) Success(text string, highlights ...string) {
	for _, h := range highlights {
		text += " <<" + h + ">>"
	}
	r.add("success", text)
}

func (r *recordingReporter) of(kind string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.kind == kind {
			out = append(out, e.text)
		}
	}
	return out
}

func (r *recordingReporter) contains(kind, sub string) bool {
	for _, t := range r.of(kind) {
		if strings.Contains(t, sub) {
			return true
		}
	}
	return false
}

// fakeTransport 可编排的 FTP 传输
type fakeTransport struct {
	welcome    string
	dialErr    error
	failFrom   int               // 第 failFrom 次拨号起失败，0 表示不失败
	accounts   map[string]string // 合法的 用户名 -> 口令
	loginReply string            // 覆盖成功应答
	listing    []string
	listErr    error
	help       string
	rawCtxs    []context.Context

	dials int
	conns []*fakeConn
}

func (t *fakeTransport) Dial(ctx context.Context, target model.Target) (Conn, error) {
	t.dials++
	if t.dialErr != nil {
		return nil, t.dialErr
	}
	if t.failFrom > 0 && t.dials >= t.failFrom {
		return nil, errors.New("dial tcp: connection refused")
	}
	c := &fakeConn{t: t}
	t.conns = append(t.conns, c)
	return c, nil
}

func (t *fakeTransport) openConns() int {
	n := 0
	for _, c := range t.conns {
		if !c.closed {
			n++
		}
	}
	return n
}

func (t *fakeTransport) lists() int {
	n := 0
	for _, c := range t.conns {
		n += c.lists
	}
	return n
}

type fakeConn struct {
	t      *fakeTransport
	closed bool
	lists  int
}

func (c *fakeConn) Welcome() string { return c.t.welcome }

func (c *fakeConn) Login(ctx context.Context, username, password string) (string, error) {
	if p, ok := c.t.accounts[username]; ok && p == password {
		if c.t.loginReply != "" {
			return c.t.loginReply, nil
		}
		return "230 User logged in", nil
	}
	return "", &textproto.Error{Code: 530, Msg: "Login incorrect"}
}

func (c *fakeConn) List(ctx context.Context, path string) ([]string, error) {
	c.lists++
	return c.t.listing, c.t.listErr
}

func (c *fakeConn) Raw(ctx context.Context, command string) (string, error) {
	c.t.rawCtxs = append(c.t.rawCtxs, ctx)
	if command != "HELP" {
		return "502 Command not implemented.", nil
	}
	return c.t.help, nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

// spySink 记录写入顺序的非事务 sink
type spySink struct {
	calls  []string
	failOn string
	hostID uint64
}

func (s *spySink) AddHost(ctx context.Context, host string, port int, banner string) error {
	s.calls = append(s.calls, "AddHost")
	if s.failOn == "AddHost" {
		return errors.New("disk full")
	}
	s.hostID = 7
	return nil
}

func (s *spySink) AddCredential(ctx context.Context, username, password string) (uint64, error) {
	s.calls = append(s.calls, "AddCredential")
	return 3, nil
}

func (s *spySink) GetHostID(ctx context.Context, host string, port int) (uint64, error) {
	s.calls = append(s.calls, "GetHostID")
	if s.hostID == 0 {
		return 0, store.ErrHostNotFound
	}
	return s.hostID, nil
}

func (s *spySink) AddLoginRelation(ctx context.Context, credentialID, hostID uint64) error {
	s.calls = append(s.calls, "AddLoginRelation")
	return nil
}
