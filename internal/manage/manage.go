// Package manage 项目与主机的增删改。
//
// 所有修改都直接作用在传入的清单上，成功后立即备份并保存。
// 保存失败时内存中的修改仍然保留，下一轮重新加载清单后自然丢弃。
package manage

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"sshmgr/internal/audit"
	"sshmgr/internal/models"
)

var (
	// ErrValidation 必填项为空、名称重复或格式不对；清单没有被修改
	ErrValidation = errors.New("校验失败")
	// ErrNotConfirmed 删除未确认；清单没有被修改
	ErrNotConfirmed = errors.New("操作已取消")
)

// Persister 由 config.Store 实现
type Persister interface {
	Backup() error
	Save(inv *models.Inventory) error
}

// ProjectFields 新建或编辑项目时的输入
type ProjectFields struct {
	Name   string
	User   string
	Key    string
	Domain string
	Port   string
}

// HostFields 新建或编辑主机时的输入
type HostFields struct {
	Name string
	Addr string
	User string
	Key  string
	Port string
}

type Manager struct {
	store   Persister
	journal *audit.Journal
	logger  *zap.Logger
}

func New(store Persister, journal *audit.Journal, logger *zap.Logger) *Manager {
	if journal == nil {
		journal = audit.Nop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, journal: journal, logger: logger}
}

// Confirmed 只有 yes（不区分大小写）算确认
func Confirmed(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), "yes")
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func validatePort(port string) error {
	if port == "" {
		return nil
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return invalid(fmt.Errorf("端口必须是 1-65535 之间的数字: %q", port))
	}
	return nil
}

func (f *ProjectFields) trim() {
	f.Name = strings.TrimSpace(f.Name)
	f.User = strings.TrimSpace(f.User)
	f.Key = strings.TrimSpace(f.Key)
	f.Domain = strings.TrimSpace(f.Domain)
	f.Port = strings.TrimSpace(f.Port)
}

func (f *HostFields) trim() {
	f.Name = strings.TrimSpace(f.Name)
	f.Addr = strings.TrimSpace(f.Addr)
	f.User = strings.TrimSpace(f.User)
	f.Key = strings.TrimSpace(f.Key)
	f.Port = strings.TrimSpace(f.Port)
}

// Commit 备份后保存，并写入变更日志。备份失败只记警告，不阻止保存。
func (m *Manager) Commit(inv *models.Inventory, action, project, host string) error {
	if err := m.store.Backup(); err != nil {
		m.logger.Warn("backup failed", zap.String("action", action), zap.Error(err))
	}
	err := m.store.Save(inv)
	m.journal.Record(audit.Entry{Action: action, Project: project, Host: host, Err: err})
	if err != nil {
		m.logger.Error("save failed", zap.String("action", action), zap.Error(err))
		return err
	}
	m.logger.Debug("inventory saved", zap.String("action", action),
		zap.String("project", project), zap.String("host", host))
	return nil
}
