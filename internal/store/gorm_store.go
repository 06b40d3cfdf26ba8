package store

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"neoftp/internal/core/model"
	"neoftp/internal/pkg/logger"
)

// GormStore 基于 GORM 的结果存储
// 写操作由 mu 串行化，多个会话可以并发调用
type GormStore struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewGormStore 包装已打开的连接并迁移表结构
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&FtpHost{}, &FtpCredential{}, &FtpLoginRelation{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) AddHost(ctx context.Context, host string, port int, banner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gormSink{db: s.db}.AddHost(ctx, host, port, banner)
}

func (s *GormStore) AddCredential(ctx context.Context, username, password string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gormSink{db: s.db}.AddCredential(ctx, username, password)
}

func (s *GormStore) GetHostID(ctx context.Context, host string, port int) (uint64, error) {
	return gormSink{db: s.db}.GetHostID(ctx, host, port)
}

func (s *GormStore) AddLoginRelation(ctx context.Context, credentialID, hostID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gormSink{db: s.db}.AddLoginRelation(ctx, credentialID, hostID)
}

// WithTx fn 内的所有写入在同一事务中提交，fn 返回错误时整体回滚
func (s *GormStore) WithTx(ctx context.Context, fn func(Sink) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormSink{db: tx})
	})
}

// ListHosts 按 ID 顺序列出主机
func (s *GormStore) ListHosts(ctx context.Context) ([]model.HostRecord, error) {
	var hosts []FtpHost
	if err := s.db.WithContext(ctx).Order("id").Find(&hosts).Error; err != nil {
		logger.LogStoreError(err, "list_hosts", nil)
		return nil, err
	}
	records := make([]model.HostRecord, 0, len(hosts))
	for _, h := range hosts {
		records = append(records, h.toRecord())
	}
	return records, nil
}

// ListCredentials 列出凭据，附带成功登录的主机数
func (s *GormStore) ListCredentials(ctx context.Context) ([]model.CredentialRecord, error) {
	var creds []FtpCredential
	if err := s.db.WithContext(ctx).Order("id").Find(&creds).Error; err != nil {
		logger.LogStoreError(err, "list_credentials", nil)
		return nil, err
	}

	var counts []struct {
		CredentialID uint64
		Logins       int
	}
	err := s.db.WithContext(ctx).
		Model(&FtpLoginRelation{}).
		Select("credential_id, count(*) as logins").
		Group("credential_id").
		Scan(&counts).Error
	if err != nil {
		logger.LogStoreError(err, "count_logins", nil)
		return nil, err
	}
	byCred := make(map[uint64]int, len(counts))
	for _, c := range counts {
		byCred[c.CredentialID] = c.Logins
	}

	records := make([]model.CredentialRecord, 0, len(creds))
	for _, c := range creds {
		records = append(records, model.CredentialRecord{
			ID:       c.ID,
			Username: c.Username,
			Password: c.Password,
			Logins:   byCred[c.ID],
		})
	}
	return records, nil
}

func (s *GormStore) ListLoginRelations(ctx context.Context) ([]model.LoginRelation, error) {
	var rels []FtpLoginRelation
	if err := s.db.WithContext(ctx).Order("id").Find(&rels).Error; err != nil {
		logger.LogStoreError(err, "list_logins", nil)
		return nil, err
	}
	records := make([]model.LoginRelation, 0, len(rels))
	for _, r := range rels {
		records = append(records, r.toRecord())
	}
	return records, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// gormSink 不加锁的写入实现，供 GormStore 与事务复用
type gormSink struct {
	db *gorm.DB
}

func (g gormSink) AddHost(ctx context.Context, host string, port int, banner string) error {
	h := FtpHost{Host: host, Port: port, Banner: banner}
	err := g.db.WithContext(ctx).
		Where("host = ? AND port = ?", host, port).
		Assign(map[string]interface{}{"banner": banner}).
		FirstOrCreate(&h).Error
	if err != nil {
		logger.LogStoreError(err, "add_host", map[string]interface{}{
			"host": host,
			"port": port,
		})
		return err
	}
	return nil
}

func (g gormSink) AddCredential(ctx context.Context, username, password string) (uint64, error) {
	// 条件用字符串形式，空用户名/空口令不能被当作零值忽略
	c := FtpCredential{Username: username, Password: password}
	err := g.db.WithContext(ctx).
		Where("username = ? AND password = ?", username, password).
		FirstOrCreate(&c).Error
	if err != nil {
		logger.LogStoreError(err, "add_credential", map[string]interface{}{
			"username": username,
		})
		return 0, err
	}
	return c.ID, nil
}

func (g gormSink) GetHostID(ctx context.Context, host string, port int) (uint64, error) {
	var h FtpHost
	err := g.db.WithContext(ctx).
		Select("id").
		Where("host = ? AND port = ?", host, port).
		First(&h).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrHostNotFound
		}
		logger.LogStoreError(err, "get_host_id", map[string]interface{}{
			"host": host,
			"port": port,
		})
		return 0, err
	}
	return h.ID, nil
}

func (g gormSink) AddLoginRelation(ctx context.Context, credentialID, hostID uint64) error {
	r := FtpLoginRelation{CredentialID: credentialID, HostID: hostID}
	err := g.db.WithContext(ctx).
		Where("credential_id = ? AND host_id = ?", credentialID, hostID).
		FirstOrCreate(&r).Error
	if err != nil {
		logger.LogStoreError(err, "add_login_relation", map[string]interface{}{
			"credential_id": credentialID,
			"host_id":       hostID,
		})
		return err
	}
	return nil
}
