/*
 * @author: Sun977
 * @date: 2026.02.10
 * @description: Cobra Root Command 定义
 */

package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"neoftp/internal/config"
	"neoftp/internal/pkg/logger"
)

var (
	cfgFile   string
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "neoftp",
	Short: "FTP 凭据探测工具",
	Long: `neoftp 对 FTP 服务进行指纹识别与凭据验证。
登录成功的主机、凭据及其关联关系写入本地结果库 (sqlite / mysql)。

示例:
  neoftp scan -t 192.168.1.10 -u anonymous --pass ""
  neoftp scan -t targets.txt -p 21,2121 -u users.txt --pass pass.txt --ls
  neoftp db creds
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initRuntime(cmd)
	},
}

func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n[FATAL] neoftp crashed unexpectedly: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径 (默认: ./configs/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "日志级别 (debug, info, warn, error)")

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newDBCmd())
	rootCmd.AddCommand(versionCmd)
}

// initRuntime 加载 .env 与配置文件，初始化日志
func initRuntime(cmd *cobra.Command) error {
	envLoader := config.NewEnvLoader()
	if err := envLoader.Load(); err != nil {
		return err
	}

	loader := config.NewConfigLoader(cfgFile, "")
	cfg, err := loader.LoadConfig()
	if err != nil {
		return err
	}
	appConfig = cfg

	initCLILogger(cmd, cfg.Log, loader.GetConfigPath() != "")

	logger.WithFields(logrus.Fields{
		"type":   logger.SystemLog,
		"config": loader.GetConfigPath(),
		"env":    envLoader.Loaded(),
	}).Debug("configuration loaded")
	return nil
}

// initCLILogger CLI 默认只输出 fatal，避免日志与控制台结果混在一起
// 显式 --log-level 或配置文件中的 log 段会覆盖默认值
func initCLILogger(cmd *cobra.Command, logCfg *config.LogConfig, fromFile bool) {
	cliCfg := *logCfg
	if !fromFile {
		cliCfg.Level = "fatal"
	}
	if flag := cmd.Flags().Lookup("log-level"); flag != nil && flag.Changed {
		cliCfg.Level = flag.Value.String()
	}

	// 控制台 debug 输出跟随日志级别
	if cliCfg.Level == "debug" {
		pterm.EnableDebugMessages()
	} else {
		pterm.DisableDebugMessages()
	}

	if _, err := logger.InitLogger(&cliCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
	}
}

func debugEnabled() bool {
	return pterm.PrintDebugMessages
}
