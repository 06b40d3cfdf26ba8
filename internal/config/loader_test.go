package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLoader_Defaults(t *testing.T) {
	// 确保搜索路径下没有 config.yaml
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	cfg, err := NewConfigLoader("", "NEOFTP_TEST").LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 21, cfg.FTP.Port)
	assert.Equal(t, 5*time.Second, cfg.FTP.Timeout)
	assert.False(t, cfg.FTP.ListDirectory)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "*", cfg.Output.AuditMode)
}

func TestConfigLoader_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "neoftp.yaml")
	content := `
ftp:
  port: 2121
  timeout: 2s
  ls: true
  continue_on_success: true
store:
  driver: memory
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("NEOFTP_TEST_OUTPUT_AUDIT_MODE", "#")

	cfg, err := NewConfigLoader(path, "NEOFTP_TEST").LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 2121, cfg.FTP.Port)
	assert.Equal(t, 2*time.Second, cfg.FTP.Timeout)
	assert.True(t, cfg.FTP.ListDirectory)
	assert.True(t, cfg.FTP.ContinueOnSuccess)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "#", cfg.Output.AuditMode)
	// 未出现在文件中的字段保持默认值
	assert.Equal(t, 100, cfg.FTP.Concurrency.Max)
}

func TestConfigLoader_MissingExplicitFile(t *testing.T) {
	_, err := NewConfigLoader(filepath.Join(t.TempDir(), "nope.yaml"), "NEOFTP_TEST").LoadConfig()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "default", mutate: func(c *Config) {}, wantErr: false},
		{name: "bad port", mutate: func(c *Config) { c.FTP.Port = 70000 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.FTP.Timeout = 0 }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "redis" }, wantErr: true},
		{name: "mysql without dsn", mutate: func(c *Config) { c.Store.Driver = "mysql"; c.Store.DSN = "" }, wantErr: true},
		{name: "inverted concurrency", mutate: func(c *Config) { c.FTP.Concurrency.Max = 1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEnvLoader_Load(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("NEOFTP_TEST_ENVLOADER=loaded\n"), 0644))
	t.Setenv("NEOFTP_TEST_ENVLOADER", "")
	os.Unsetenv("NEOFTP_TEST_ENVLOADER")

	loader := NewEnvLoader(envFile, filepath.Join(dir, "missing.env"))
	require.NoError(t, loader.Load())
	assert.Equal(t, "loaded", os.Getenv("NEOFTP_TEST_ENVLOADER"))
	assert.Equal(t, []string{envFile}, loader.Loaded())

	// 第二次调用不再读取文件
	require.NoError(t, os.Remove(envFile))
	require.NoError(t, loader.Load())
	assert.Equal(t, []string{envFile}, loader.Loaded())
}

func TestConfig_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "config.yaml")
	require.NoError(t, Default().Save(path))

	cfg, err := NewConfigLoader(path, "NEOFTP_TEST").LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Default().FTP.Port, cfg.FTP.Port)
	assert.Equal(t, Default().Store.DSN, cfg.Store.DSN)
}
