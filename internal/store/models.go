package store

import (
	"time"

	"neoftp/internal/core/model"
)

// BaseModel 主键与时间戳，由 GORM 自动维护
type BaseModel struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement;comment:主键ID"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:创建时间"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;comment:更新时间"`
}

// FtpHost 主机表，(host, port) 唯一
type FtpHost struct {
	BaseModel
	Host   string `gorm:"size:255;not null;uniqueIndex:idx_ftp_host_port;comment:主机地址"`
	Port   int    `gorm:"not null;uniqueIndex:idx_ftp_host_port;comment:端口"`
	Banner string `gorm:"size:1024;comment:欢迎信息(版本)"`
}

func (FtpHost) TableName() string { return "ftp_hosts" }

func (h FtpHost) toRecord() model.HostRecord {
	return model.HostRecord{
		ID:        h.ID,
		Host:      h.Host,
		Port:      h.Port,
		Banner:    h.Banner,
		UpdatedAt: h.UpdatedAt,
	}
}

// FtpCredential 凭据表，(username, password) 唯一
type FtpCredential struct {
	BaseModel
	Username string `gorm:"size:255;not null;uniqueIndex:idx_ftp_cred;comment:用户名"`
	Password string `gorm:"size:255;not null;uniqueIndex:idx_ftp_cred;comment:口令"`
}

func (FtpCredential) TableName() string { return "ftp_credentials" }

// FtpLoginRelation 登录关系表
type FtpLoginRelation struct {
	BaseModel
	CredentialID uint64 `gorm:"not null;uniqueIndex:idx_ftp_login;comment:凭据ID"`
	HostID       uint64 `gorm:"not null;uniqueIndex:idx_ftp_login;comment:主机ID"`
}

func (FtpLoginRelation) TableName() string { return "ftp_logins" }

func (r FtpLoginRelation) toRecord() model.LoginRelation {
	return model.LoginRelation{
		ID:           r.ID,
		CredentialID: r.CredentialID,
		HostID:       r.HostID,
	}
}
