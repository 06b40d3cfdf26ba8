package reporter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pterm/pterm" // 引入 pterm 库用于控制台输出
	"github.com/sirupsen/logrus"

	"neoftp/internal/core/model"
	"neoftp/internal/pkg/logger"
)

// Console 控制台输出端，多个会话共享同一个 Console，逐行加锁写出
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	debug bool
}

func NewConsole(out io.Writer, debug bool) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out, debug: debug}
}

// For 返回绑定到某个目标的 Reporter，输出行前缀为 "FTP host port"
func (c *Console) For(service string, target model.Target) *ConsoleReporter {
	return &ConsoleReporter{
		console: c,
		prefix:  fmt.Sprintf("%-6s %-15s %-5s", service, target.Host, strconv.Itoa(target.Port)),
		fields: logrus.Fields{
			"protocol": service,
			"host":     target.Host,
			"port":     target.Port,
		},
	}
}

// ConsoleReporter 控制台输出
type ConsoleReporter struct {
	console *Console
	prefix  string
	fields  logrus.Fields
}

var highlightStyle = pterm.NewStyle(pterm.FgLightYellow, pterm.Bold)

func (r *ConsoleReporter) Debug(text string) {
	logger.WithFields(r.fields).Debug(text)
	if !r.console.debug {
		return
	}
	r.println(pterm.Debug, text)
}

func (r *ConsoleReporter) Display(text string) {
	r.println(pterm.Info, text)
}

func (r *ConsoleReporter) Success(text string, highlights ...string) {
	entry := logger.WithFields(r.fields)
	if len(highlights) > 0 {
		entry = entry.WithField("marker", strings.Join(highlights, " "))
	}
	entry.Info(text)

	line := text
	for _, h := range highlights {
		line += " " + highlightStyle.Sprint(h)
	}
	r.println(pterm.Success, line)
}

func (r *ConsoleReporter) Fail(text string) {
	r.println(pterm.Error, text)
}

func (r *ConsoleReporter) Highlight(text string) {
	r.println(pterm.Info, highlightStyle.Sprint(text))
}

func (r *ConsoleReporter) println(p pterm.PrefixPrinter, text string) {
	r.console.mu.Lock()
	defer r.console.mu.Unlock()
	// pterm.Debug 只在 PrintDebugMessages 打开时输出，这里由 Console.debug 控制
	p.Debugger = false
	p.WithWriter(r.console.out).Println(r.prefix + " " + text)
}

// PrintTable 渲染表格
func (c *Console) PrintTable(data TabularData) error {
	return c.PrintRows(data.Headers(), data.Rows())
}

func (c *Console) PrintRows(headers []string, rows [][]string) error {
	if len(rows) == 0 {
		c.mu.Lock()
		defer c.mu.Unlock()
		pterm.Warning.WithWriter(c.out).Println("No results found.")
		return nil
	}

	tableData := pterm.TableData{headers}
	tableData = append(tableData, rows...)

	s, err := pterm.DefaultTable.
		WithHasHeader(true).
		WithBoxed(false). // 简洁风格
		WithData(tableData).
		Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = fmt.Fprintln(c.out, s)
	return err
}
