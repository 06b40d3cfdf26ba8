package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// EnvLoader 在 viper 读取 NEOFTP_ 环境变量之前加载 .env 文件
// 进程中已存在的变量优先，不会被文件覆盖
type EnvLoader struct {
	files  []string
	loaded []string
}

func NewEnvLoader(files ...string) *EnvLoader {
	if len(files) == 0 {
		files = []string{".env"}
	}
	return &EnvLoader{files: files}
}

// Load 重复调用只加载一次，文件不存在时跳过
func (e *EnvLoader) Load() error {
	if e.loaded != nil {
		return nil
	}
	loaded := []string{}
	for _, f := range e.files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
		loaded = append(loaded, f)
	}
	e.loaded = loaded
	return nil
}

// Loaded 实际加载过的文件
func (e *EnvLoader) Loaded() []string {
	return e.loaded
}
