package protocol

import (
	"errors"
	"strings"
)

var ErrBannerMalformed = errors.New("ftp welcome has no 220 marker")

const readyMarker = "220"

// ParseBanner 取欢迎信息中第一个 "220" 之后的内容并去掉首尾空白
// 没有 "220" 时原样返回欢迎信息，同时返回 ErrBannerMalformed
func ParseBanner(welcome string) (string, error) {
	i := strings.Index(welcome, readyMarker)
	if i < 0 {
		return welcome, ErrBannerMalformed
	}
	return strings.TrimSpace(welcome[i+len(readyMarker):]), nil
}
