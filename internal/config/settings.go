package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// AppDir 用户配置目录下的子目录名
const AppDir = "ssh_manager"

// EnvPrefix 环境变量前缀，例如 SSHMGR_PICKER、SSHMGR_LOG_LEVEL
const EnvPrefix = "SSHMGR_"

// JournalFile 变更日志默认文件名，与清单放在同一目录
const JournalFile = "changes.log"

const maxSettingsFileSize = 64 * 1024

// 选择器类型
const (
	PickerFzf     = "fzf"
	PickerBuiltin = "builtin"
	PickerAuto    = "auto"
)

// Settings 程序自身的设置（不是清单）
type Settings struct {
	InventoryPath string          `koanf:"inventory_path"`
	Picker        string          `koanf:"picker"`
	FzfPath       string          `koanf:"fzf_path"`
	Log           LogSettings     `koanf:"log"`
	Journal       JournalSettings `koanf:"journal"`
}

type LogSettings struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type JournalSettings struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// DefaultSettingsPath 默认设置文件：os.UserConfigDir()/ssh_manager/settings.yaml
func DefaultSettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppDir, "settings.yaml"), nil
}

func defaultSettings() map[string]any {
	return map[string]any{
		"picker":          PickerFzf,
		"fzf_path":        "fzf",
		"log.level":       "warn",
		"log.format":      "console",
		"journal.enabled": true,
	}
}

// LoadSettings 依次加载：内置默认值 → YAML 设置文件（可不存在）→ SSHMGR_ 环境变量。
// path 为空时使用默认路径。
func LoadSettings(path string) (*Settings, error) {
	k := koanf.New(".")

	for key, val := range defaultSettings() {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("加载默认设置失败: %w", err)
		}
	}

	if path == "" {
		p, err := DefaultSettingsPath()
		if err != nil {
			return nil, fmt.Errorf("获取配置目录失败: %w", err)
		}
		path = p
	}

	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return nil, fmt.Errorf("设置文件 %s 是目录", path)
		}
		if info.Size() > maxSettingsFileSize {
			return nil, fmt.Errorf("设置文件 %s 过大 (%d 字节)", path, info.Size())
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取设置文件失败: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("解析设置文件 %s 失败: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("读取设置文件失败: %w", err)
	}

	// SSHMGR_LOG_LEVEL -> log.level，SSHMGR_INVENTORY_PATH -> inventory_path
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("加载环境变量失败: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("解析设置失败: %w", err)
	}
	if err := s.applyDefaults(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("设置校验失败: %w", err)
	}
	return &s, nil
}

// envKey 把环境变量名映射到设置键。log_ 与 journal_ 前缀映射为嵌套键，其余保持下划线。
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range []string{"log", "journal"} {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

func (s *Settings) applyDefaults() error {
	if s.InventoryPath == "" {
		p, err := DefaultInventoryPath()
		if err != nil {
			return fmt.Errorf("获取配置目录失败: %w", err)
		}
		s.InventoryPath = p
	}
	if s.Journal.Path == "" {
		s.Journal.Path = defaultJournalPath(s.InventoryPath)
	}
	return nil
}

func defaultJournalPath(inventory string) string {
	return filepath.Join(filepath.Dir(inventory), JournalFile)
}

// SetInventoryPath 切换清单路径；变更日志没有单独配置时跟随清单目录
func (s *Settings) SetInventoryPath(path string) {
	if s.Journal.Path == defaultJournalPath(s.InventoryPath) {
		s.Journal.Path = defaultJournalPath(path)
	}
	s.InventoryPath = path
}

// Validate 检查选择器类型与日志格式
func (s *Settings) Validate() error {
	switch s.Picker {
	case PickerFzf, PickerBuiltin, PickerAuto:
	default:
		return fmt.Errorf("picker 必须是 fzf、builtin 或 auto，当前为 %q", s.Picker)
	}
	if s.Log.Format != "console" && s.Log.Format != "json" {
		return fmt.Errorf("log.format 必须是 console 或 json，当前为 %q", s.Log.Format)
	}
	if s.Picker != PickerBuiltin && s.FzfPath == "" {
		return fmt.Errorf("fzf_path 不能为空")
	}
	return nil
}
