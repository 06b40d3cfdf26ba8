package protocol

import (
	"bufio"
	"bytes"
	"net"
	"net/textproto"
	"strings"
	"sync"
)

// tapConn 记录读取到的原始字节
// jlaffaye/ftp 不暴露欢迎信息、登录应答和 LIST 原始行，从这里取回
type tapConn struct {
	net.Conn
	addr *net.TCPAddr

	mu    sync.Mutex
	armed bool
	buf   bytes.Buffer
}

func newTapConn(c net.Conn, address string) *tapConn {
	t := &tapConn{Conn: c}
	// 经 SOCKS5 建立的连接 RemoteAddr 不是 *net.TCPAddr，按拨号地址补齐
	if _, ok := c.RemoteAddr().(*net.TCPAddr); !ok {
		host, port, err := net.SplitHostPort(address)
		if err == nil {
			p, _ := net.LookupPort("tcp", port)
			t.addr = &net.TCPAddr{IP: net.ParseIP(host), Port: p}
		}
	}
	return t
}

func (t *tapConn) Read(p []byte) (int, error) {
	n, err := t.Conn.Read(p)
	if n > 0 {
		t.mu.Lock()
		if t.armed {
			t.buf.Write(p[:n])
		}
		t.mu.Unlock()
	}
	return n, err
}

func (t *tapConn) RemoteAddr() net.Addr {
	if t.addr != nil {
		return t.addr
	}
	return t.Conn.RemoteAddr()
}

// record 清空缓冲并开始记录
func (t *tapConn) record() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = true
	t.buf.Reset()
}

// take 停止记录并取走已记录的字节
func (t *tapConn) take() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = false
	out := bytes.Clone(t.buf.Bytes())
	t.buf.Reset()
	return out
}

// readReply 读取一个完整应答
// 多行应答 ("220-" 开头) 读到同状态码且第 4 个字符不是 '-' 的行为止
// 各行去掉 CRLF 后以 \n 连接，保留状态码前缀
func readReply(r *textproto.Reader) (string, error) {
	first, err := r.ReadLine()
	if err != nil {
		return "", err
	}
	if len(first) < 4 || first[3] != '-' {
		return first, nil
	}

	code := first[:3]
	lines := []string{first}
	for {
		line, err := r.ReadLine()
		if err != nil {
			return strings.Join(lines, "\n"), err
		}
		lines = append(lines, line)
		if len(line) >= 3 && line[:3] == code && (len(line) == 3 || line[3] != '-') {
			break
		}
	}
	return strings.Join(lines, "\n"), nil
}

// parseReplies 把一段控制连接字节流切分成应答
func parseReplies(raw []byte) []string {
	r := textproto.NewReader(bufio.NewReader(bytes.NewReader(raw)))
	var replies []string
	for {
		reply, err := readReply(r)
		if reply != "" {
			replies = append(replies, reply)
		}
		if err != nil {
			return replies
		}
	}
}

// findReply 返回第一个以 code 开头的应答
func findReply(raw []byte, code string) (string, bool) {
	for _, reply := range parseReplies(raw) {
		if strings.HasPrefix(reply, code) {
			return reply, true
		}
	}
	return "", false
}

// lastErrorReply 返回最后一个 4xx/5xx 应答 (保留状态码)
func lastErrorReply(raw []byte) (string, bool) {
	replies := parseReplies(raw)
	for i := len(replies) - 1; i >= 0; i-- {
		if r := replies[i]; len(r) >= 3 && (r[0] == '4' || r[0] == '5') {
			return r, true
		}
	}
	return "", false
}

// splitLines 数据连接内容按行切分，保留中间空行，去掉末尾换行产生的空串
func splitLines(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
