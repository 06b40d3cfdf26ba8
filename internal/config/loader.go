package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ConfigLoader 配置加载器
type ConfigLoader struct {
	configFile string
	envPrefix  string
	viper      *viper.Viper
}

// NewConfigLoader 创建配置加载器
// configFile 为空时按 ./configs、. 的顺序搜索 config.yaml
func NewConfigLoader(configFile, envPrefix string) *ConfigLoader {
	if envPrefix == "" {
		envPrefix = "NEOFTP"
	}

	return &ConfigLoader{
		configFile: configFile,
		envPrefix:  envPrefix,
		viper:      viper.New(),
	}
}

// Viper 暴露底层 viper 实例，便于 CLI 绑定 flag
func (cl *ConfigLoader) Viper() *viper.Viper {
	return cl.viper
}

// LoadConfig 加载配置
func (cl *ConfigLoader) LoadConfig() (*Config, error) {
	cl.viper.SetConfigType("yaml")

	// 环境变量: NEOFTP_FTP_TIMEOUT -> ftp.timeout
	cl.viper.SetEnvPrefix(cl.envPrefix)
	cl.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cl.viper.AutomaticEnv()

	cl.setDefaults()

	if err := cl.loadConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	config := Default()
	if err := cl.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// loadConfigFile 加载配置文件
// 显式指定的文件必须存在；搜索路径下找不到配置文件时使用默认值
func (cl *ConfigLoader) loadConfigFile() error {
	if cl.configFile == "" {
		cl.configFile = os.Getenv(cl.envPrefix + "_CONFIG_PATH")
	}

	if cl.configFile != "" {
		cl.viper.SetConfigFile(cl.configFile)
		return cl.viper.ReadInConfig()
	}

	cl.viper.AddConfigPath("./configs")
	cl.viper.AddConfigPath(".")
	cl.viper.SetConfigName("config")

	if err := cl.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// setDefaults 设置默认值
func (cl *ConfigLoader) setDefaults() {
	def := Default()

	cl.viper.SetDefault("app.name", def.App.Name)
	cl.viper.SetDefault("app.version", def.App.Version)
	cl.viper.SetDefault("app.environment", def.App.Environment)

	cl.viper.SetDefault("log.level", def.Log.Level)
	cl.viper.SetDefault("log.format", def.Log.Format)
	cl.viper.SetDefault("log.output", def.Log.Output)
	cl.viper.SetDefault("log.file_path", def.Log.FilePath)
	cl.viper.SetDefault("log.max_size", def.Log.MaxSize)
	cl.viper.SetDefault("log.max_backups", def.Log.MaxBackups)
	cl.viper.SetDefault("log.max_age", def.Log.MaxAge)
	cl.viper.SetDefault("log.compress", def.Log.Compress)
	cl.viper.SetDefault("log.caller", def.Log.Caller)

	cl.viper.SetDefault("ftp.port", def.FTP.Port)
	cl.viper.SetDefault("ftp.timeout", def.FTP.Timeout)
	cl.viper.SetDefault("ftp.ls", def.FTP.ListDirectory)
	cl.viper.SetDefault("ftp.continue_on_success", def.FTP.ContinueOnSuccess)
	cl.viper.SetDefault("ftp.probe_commands", def.FTP.ProbeCommands)
	cl.viper.SetDefault("ftp.no_bruteforce", def.FTP.NoBruteforce)
	cl.viper.SetDefault("ftp.proxy", def.FTP.Proxy)
	cl.viper.SetDefault("ftp.concurrency.initial", def.FTP.Concurrency.Initial)
	cl.viper.SetDefault("ftp.concurrency.min", def.FTP.Concurrency.Min)
	cl.viper.SetDefault("ftp.concurrency.max", def.FTP.Concurrency.Max)

	cl.viper.SetDefault("output.audit_mode", def.Output.AuditMode)
	cl.viper.SetDefault("output.reveal_chars", def.Output.RevealChars)
	cl.viper.SetDefault("output.csv", def.Output.CSV)

	cl.viper.SetDefault("store.driver", def.Store.Driver)
	cl.viper.SetDefault("store.dsn", def.Store.DSN)
	cl.viper.SetDefault("store.log_level", def.Store.LogLevel)
}

// GetConfigPath 获取实际使用的配置文件路径 (未使用配置文件时为空)
func (cl *ConfigLoader) GetConfigPath() string {
	return cl.viper.ConfigFileUsed()
}
