package reporter

import (
	"strings"
	"unicode/utf8"
)

// Redactor 将口令等敏感文本转换为可展示形式
type Redactor func(secret string) string

// maskWidth 单字符掩码的重复次数，固定长度避免泄露口令长度
const maskWidth = 8

// PlainRedactor 原样输出
func PlainRedactor(secret string) string { return secret }

// NewAuditRedactor 按审计配置构造 Redactor
// auditChar 为空时不打码；否则保留前 reveal 个字符，其余替换为掩码
func NewAuditRedactor(auditChar string, reveal int) Redactor {
	if auditChar == "" {
		return PlainRedactor
	}
	mask := auditChar
	if utf8.RuneCountInString(auditChar) == 1 {
		mask = strings.Repeat(auditChar, maskWidth)
	}
	if reveal < 0 {
		reveal = 0
	}
	return func(secret string) string {
		runes := []rune(secret)
		if reveal >= len(runes) {
			// 口令不长于 reveal 时整体打码
			return mask
		}
		return string(runes[:reveal]) + mask
	}
}
