package model

import (
	"net"
	"strconv"
	"time"
)

// Target 单个探测目标，会话生命周期内不可变
type Target struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Addr 返回 host:port (IPv6 自动加方括号)
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

func (t Target) String() string {
	return t.Addr()
}

// HostRecord 主机记录 (host+port 唯一)
type HostRecord struct {
	ID        uint64    `json:"id"`
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	Banner    string    `json:"banner"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CredentialRecord 凭据记录 (username+password 唯一)
type CredentialRecord struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Logins   int    `json:"logins"` // 关联的成功登录主机数
}

// LoginRelation 记录某凭据在某主机上登录成功
type LoginRelation struct {
	ID           uint64 `json:"id"`
	CredentialID uint64 `json:"credential_id"`
	HostID       uint64 `json:"host_id"`
}

// BruteResult 单条登录成功结果
type BruteResult struct {
	Service   string `json:"service"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Banner    string `json:"banner,omitempty"`
	Anonymous bool   `json:"anonymous,omitempty"`
	Success   bool   `json:"success"`
}

// Headers 实现 TabularData 接口
func (r BruteResult) Headers() []string {
	return []string{"Service", "Host", "Port", "Username", "Password", "Banner"}
}

// Rows 实现 TabularData 接口
func (r BruteResult) Rows() [][]string {
	return [][]string{{r.Service, r.Host, strconv.Itoa(r.Port), r.Username, r.Password, r.Banner}}
}
