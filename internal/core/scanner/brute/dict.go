package brute

import (
	"strings"
)

// DefaultFTPUsers 内置 FTP 用户名
var DefaultFTPUsers = []string{
	"anonymous", "ftp", "admin", "root", "test", "user", "ftpuser", "www",
}

// DefaultFTPPasswords 内置 FTP 弱口令
var DefaultFTPPasswords = []string{
	"123456", "password", "12345678", "admin", "test", "ftp",
	"%user%", "%user%123", "%user%@123",
}

// anonymousAuth 匿名登录，未指定字典时总是第一个尝试
var anonymousAuth = Auth{Username: "anonymous", Password: ""}

// DictManager 字典管理器
type DictManager struct{}

// NewDictManager 创建字典管理器
func NewDictManager() *DictManager {
	return &DictManager{}
}

// Generate 生成凭据列表
// params: 任务参数
//   - "users": []string 或 string (逗号分隔), 覆盖内置用户名
//   - "passwords": []string 或 string (逗号分隔), 覆盖内置密码
//   - "no_bruteforce": bool, 用户名与密码按位置配对，不做笛卡尔积
func (d *DictManager) Generate(params map[string]interface{}) []Auth {
	users, customUsers := extractStringSlice(params, "users", DefaultFTPUsers)
	passs, customPass := extractStringSlice(params, "passwords", DefaultFTPPasswords)
	noBrute, _ := params["no_bruteforce"].(bool)

	var list []Auth
	seen := make(map[Auth]struct{})
	add := func(a Auth) {
		if _, ok := seen[a]; ok {
			return
		}
		seen[a] = struct{}{}
		list = append(list, a)
	}

	if !customUsers && !customPass {
		add(anonymousAuth)
	}

	if noBrute {
		n := len(users)
		if len(passs) < n {
			n = len(passs)
		}
		for i := 0; i < n; i++ {
			add(Auth{Username: users[i], Password: strings.ReplaceAll(passs[i], "%user%", users[i])})
		}
		return list
	}

	// 笛卡尔积: User * Pass
	for _, u := range users {
		for _, p := range passs {
			add(Auth{Username: u, Password: strings.ReplaceAll(p, "%user%", u)})
		}
	}
	return list
}

// extractStringSlice 从 map 中提取字符串切片，第二个返回值表示是否使用了自定义值
// 显式给出的空字符串会保留 (空口令是合法凭据)
func extractStringSlice(m map[string]interface{}, key string, defaultVal []string) ([]string, bool) {
	if m == nil {
		return defaultVal, false
	}

	switch v := m[key].(type) {
	case []string:
		if len(v) > 0 {
			return v, true
		}
	case string:
		if v != "" {
			parts := strings.Split(v, ",")
			res := make([]string, 0, len(parts))
			for _, p := range parts {
				res = append(res, strings.TrimSpace(p))
			}
			return res, true
		}
	case []interface{}:
		var res []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				res = append(res, s)
			}
		}
		if len(res) > 0 {
			return res, true
		}
	}
	return defaultVal, false
}
