/**
 * 结果存储接口定义
 * @author: Sun977
 * @date: 2026.02.10
 * @description: FTP 会话登录成功后写入主机、凭据及其关联关系，多会话并发写入
 */

package store

import (
	"context"
	"errors"

	"neoftp/internal/core/model"
)

var ErrHostNotFound = errors.New("host not found")

// Sink 会话侧使用的写入接口
type Sink interface {
	// AddHost 按 host+port 插入或更新主机，banner 作为版本信息
	AddHost(ctx context.Context, host string, port int, banner string) error
	// AddCredential 插入或复用凭据，返回凭据 ID
	AddCredential(ctx context.Context, username, password string) (uint64, error)
	// GetHostID 查询主机 ID，不存在时返回 ErrHostNotFound
	GetHostID(ctx context.Context, host string, port int) (uint64, error)
	// AddLoginRelation 记录凭据在主机上登录成功 (重复写入幂等)
	AddLoginRelation(ctx context.Context, credentialID, hostID uint64) error
}

// Transactional 支持把一组写入放进同一事务
type Transactional interface {
	WithTx(ctx context.Context, fn func(Sink) error) error
}

// Store 完整的结果存储
type Store interface {
	Sink
	Transactional
	ListHosts(ctx context.Context) ([]model.HostRecord, error)
	ListCredentials(ctx context.Context) ([]model.CredentialRecord, error)
	ListLoginRelations(ctx context.Context) ([]model.LoginRelation, error)
	Close() error
}
