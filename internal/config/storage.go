package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"sshmgr/internal/models"
)

var (
	// ErrConfigUnreadable 记录存在但无法读取或解析；Load 仍会返回空清单
	ErrConfigUnreadable = errors.New("清单文件无法读取")
	// ErrConfigWriteFailed 目录创建或写入失败；内存中的修改未落盘
	ErrConfigWriteFailed = errors.New("清单文件写入失败")
)

// BackupSuffix 备份文件后缀
const BackupSuffix = ".bak"

// Store 读写固定路径上的清单记录。
// 不加文件锁：两个进程同时保存时后写者覆盖前者。
type Store struct {
	path string
}

// NewStore 使用显式路径创建 Store
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultInventoryPath 默认清单路径：os.UserConfigDir()/ssh_manager/hosts.json
// Linux 为 ~/.config/ssh_manager/hosts.json
func DefaultInventoryPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppDir, "hosts.json"), nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) BackupPath() string { return s.path + BackupSuffix }

func (s *Store) ensureDir() error {
	return os.MkdirAll(filepath.Dir(s.path), 0700)
}

// Load 读取清单。文件不存在时只创建目录并返回空清单；
// 文件损坏时返回空清单和 ErrConfigUnreadable，由调用方提示用户。
func (s *Store) Load() (*models.Inventory, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := s.ensureDir(); err != nil {
				return models.NewInventory(), fmt.Errorf("%w: 创建目录失败: %v", ErrConfigUnreadable, err)
			}
			return models.NewInventory(), nil
		}
		return models.NewInventory(), fmt.Errorf("%w: %s: %v", ErrConfigUnreadable, s.path, err)
	}
	var inv models.Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return models.NewInventory(), fmt.Errorf("%w: 解析 %s 失败: %v", ErrConfigUnreadable, s.path, err)
	}
	inv.Normalize()
	return &inv, nil
}

// Encode 以两个空格缩进编码清单，字段顺序固定，不转义 HTML 字符
func Encode(inv *models.Inventory) ([]byte, error) {
	inv.Normalize()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(inv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save 先写同目录临时文件再 rename，写入失败时原文件保持不变
func (s *Store) Save(inv *models.Inventory) error {
	if err := s.ensureDir(); err != nil {
		return fmt.Errorf("%w: 创建目录失败: %v", ErrConfigWriteFailed, err)
	}
	data, err := Encode(inv)
	if err != nil {
		return fmt.Errorf("%w: 编码失败: %v", ErrConfigWriteFailed, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigWriteFailed, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: %v", ErrConfigWriteFailed, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: %v", ErrConfigWriteFailed, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: %v", ErrConfigWriteFailed, err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		cleanup()
		return fmt.Errorf("%w: %v", ErrConfigWriteFailed, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("%w: %v", ErrConfigWriteFailed, err)
	}
	return nil
}

// Backup 把当前记录复制到 <path>.bak，覆盖旧备份；记录不存在时什么都不做
func (s *Store) Backup() error {
	src, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(s.BackupPath(), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}
