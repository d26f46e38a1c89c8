package utils

import (
	"fmt"
	"os"
)

// EnsureDirectories 确保运行所需的目录存在
func EnsureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录失败 %s: %w", dir, err)
		}
	}
	return nil
}

// EnvCheck 单项环境检查结果
type EnvCheck struct {
	Name    string `json:"name"`
	Ok      bool   `json:"ok"`
	Message string `json:"message"`
}

// CheckEnvironment 检查关键环境变量的配置情况
func CheckEnvironment() []EnvCheck {
	checks := []EnvCheck{}

	if os.Getenv("OPENAI_API_KEY") != "" {
		checks = append(checks, EnvCheck{Name: "OPENAI_API_KEY", Ok: true, Message: "configured"})
	} else {
		checks = append(checks, EnvCheck{Name: "OPENAI_API_KEY", Ok: false, Message: "not set, embeddings and hosted LLM disabled"})
	}

	if addr := os.Getenv("MILVUS_ADDRESS"); addr != "" {
		checks = append(checks, EnvCheck{Name: "MILVUS_ADDRESS", Ok: true, Message: addr})
	} else {
		checks = append(checks, EnvCheck{Name: "MILVUS_ADDRESS", Ok: false, Message: "not set, using localhost:19530"})
	}

	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		checks = append(checks, EnvCheck{Name: "OLLAMA_HOST", Ok: true, Message: host})
	} else {
		checks = append(checks, EnvCheck{Name: "OLLAMA_HOST", Ok: false, Message: "not set, using http://localhost:11434"})
	}

	return checks
}
