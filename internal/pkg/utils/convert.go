package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ParsePortList 解析端口列表字符串，支持逗号分隔和范围 (e.g. "21,2121,8021-8023")
// 结果去重并保持输入顺序；越界或无法解析的项返回错误
func ParsePortList(input string) ([]int, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	var result []int
	seen := make(map[int]bool)

	add := func(p int) error {
		if p <= 0 || p > 65535 {
			return fmt.Errorf("port out of range: %d", p)
		}
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
		return nil
	}

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err1 := strconv.Atoi(strings.TrimSpace(lo))
			end, err2 := strconv.Atoi(strings.TrimSpace(hi))
			if err1 != nil || err2 != nil || start > end {
				return nil, fmt.Errorf("invalid port range: %s", part)
			}
			for i := start; i <= end; i++ {
				if err := add(i); err != nil {
					return nil, err
				}
			}
			continue
		}

		val, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid port: %s", part)
		}
		if err := add(val); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// LoadList 解析用户输入，支持文件路径或逗号分隔的字符串
// 文件按行读取 (兼容 \r\n)，空行忽略
func LoadList(input string) ([]string, error) {
	if input == "" {
		return nil, nil
	}

	info, err := os.Stat(input)
	if err == nil && !info.IsDir() {
		content, err := os.ReadFile(input)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", input, err)
		}
		lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
		var result []string
		for _, line := range lines {
			if line = strings.TrimSpace(line); line != "" {
				result = append(result, line)
			}
		}
		return result, nil
	}

	var result []string
	for _, p := range strings.Split(input, ",") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result, nil
}
