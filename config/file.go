package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadFile 按扩展名解析配置文件，覆盖 conf 中已有的值
func LoadFile(path string, conf *Setting) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), conf); err != nil {
			return fmt.Errorf("parsing toml config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, conf); err != nil {
			return fmt.Errorf("parsing yaml config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, conf); err != nil {
			return fmt.Errorf("parsing json config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
	return nil
}
