/**
 * 结果上报接口定义
 * @author: Sun977
 * @date: 2026.01.21
 * @description: 会话过程输出 (debug/display/success/fail/highlight) 与表格化结果输出
 */

package reporter

// TabularData 是一个可以被渲染为表格的数据接口
type TabularData interface {
	Headers() []string
	Rows() [][]string
}

// Reporter 单个目标会话的过程输出
// 所有方法只负责展示，不会返回错误
type Reporter interface {
	Debug(text string)
	Display(text string)
	// Success highlights 为附加在成功信息后的高亮标记 (如匿名登录)
	Success(text string, highlights ...string)
	Fail(text string)
	// Highlight 输出一行高亮文本
	Highlight(text string)
}

// NopReporter 丢弃所有输出
type NopReporter struct{}

func (NopReporter) Debug(string)              {}
func (NopReporter) Display(string)            {}
func (NopReporter) Success(string, ...string) {}
func (NopReporter) Fail(string)               {}
func (NopReporter) Highlight(string)          {}
