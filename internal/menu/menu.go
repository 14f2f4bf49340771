// Package menu 主菜单循环：每一轮重新加载清单，选择操作，交给 manage 执行。
package menu

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"sshmgr/internal/config"
	"sshmgr/internal/console"
	"sshmgr/internal/manage"
	"sshmgr/internal/models"
	"sshmgr/internal/picker"
	"sshmgr/internal/selector"
)

// 菜单项，选择器返回的字符串与之精确匹配
const (
	ActionAddHost       = "1. 添加主机"
	ActionEditHost      = "2. 编辑主机"
	ActionDeleteHost    = "3. 删除主机"
	ActionAddProject    = "4. 添加项目"
	ActionEditProject   = "5. 编辑项目"
	ActionDeleteProject = "6. 删除项目"
	ActionExit          = "7. 退出"
)

// Actions 菜单显示顺序
var Actions = []string{
	ActionAddHost,
	ActionEditHost,
	ActionDeleteHost,
	ActionAddProject,
	ActionEditProject,
	ActionDeleteProject,
	ActionExit,
}

// ErrPickerFailed 选择器连续失败，菜单无法继续
var ErrPickerFailed = errors.New("选择器连续失败")

// maxPickerFailures 连续失败达到该次数后退出循环，取消不计入
const maxPickerFailures = 3

type state int

const (
	running state = iota
	exiting
)

// Loader 由 config.Store 实现
type Loader interface {
	Load() (*models.Inventory, error)
}

type Menu struct {
	store  Loader
	mgr    *manage.Manager
	picker picker.Picker
	con    console.Console
	logger *zap.Logger
}

func New(store Loader, mgr *manage.Manager, p picker.Picker, con console.Console, logger *zap.Logger) *Menu {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Menu{store: store, mgr: mgr, picker: p, con: con, logger: logger}
}

// Run 循环直到选择退出、ctx 取消或输入结束（stdin 关闭）。
// 选择器连续失败 maxPickerFailures 次时返回 ErrPickerFailed；其余错误都只提示并回到菜单。
func (m *Menu) Run(ctx context.Context) error {
	st := running
	failures := 0
	for st == running {
		if err := ctx.Err(); err != nil {
			return err
		}
		// 每轮都从磁盘重新读取，不跨轮缓存
		inv, err := m.store.Load()
		if err != nil {
			m.logger.Warn("inventory unreadable, using empty inventory", zap.Error(err))
			m.con.Println("读取清单失败，已使用空清单:", err)
		}

		m.con.Println("\n--- 主机管理菜单 ---")
		choice, err := m.picker.Pick(ctx, "选择操作:", Actions)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return nil
			case ctx.Err() != nil:
				return ctx.Err()
			case errors.Is(err, picker.ErrCancelled):
				failures = 0
				m.con.Println("未选择任何操作。")
			default:
				failures++
				m.logger.Warn("picker failed", zap.Int("attempt", failures), zap.Error(err))
				m.con.Println("选择操作失败:", err)
				if failures >= maxPickerFailures {
					return fmt.Errorf("%w (%d 次): %w", ErrPickerFailed, failures, err)
				}
			}
			continue
		}
		failures = 0

		if choice == ActionExit {
			m.con.Println("退出主机管理。")
			st = exiting
			continue
		}
		err = m.dispatch(ctx, choice, inv)
		if errors.Is(err, io.EOF) {
			return nil
		}
		m.report(err)
	}
	return nil
}

func (m *Menu) dispatch(ctx context.Context, choice string, inv *models.Inventory) error {
	switch choice {
	case ActionAddHost:
		return m.addHost(ctx, inv)
	case ActionEditHost:
		return m.editHost(ctx, inv)
	case ActionDeleteHost:
		return m.deleteHost(ctx, inv)
	case ActionAddProject:
		return m.addProject(inv)
	case ActionEditProject:
		return m.editProject(ctx, inv)
	case ActionDeleteProject:
		return m.deleteProject(ctx, inv)
	default:
		m.con.Println("无效的选择，请重试。")
		return nil
	}
}

// report 把错误转成给用户看的提示
func (m *Menu) report(err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, picker.ErrToolMissing):
		m.con.Println("找不到选择器程序，请安装 fzf 或在设置中使用 picker: builtin。", err)
	case errors.Is(err, selector.ErrSelectionCancelled):
		m.con.Println("未选择。")
	case errors.Is(err, selector.ErrNoProjects), errors.Is(err, selector.ErrNoHosts):
		m.con.Println(err.Error() + "。")
	case errors.Is(err, manage.ErrNotConfirmed):
		m.con.Println("已取消删除。")
	case errors.Is(err, manage.ErrValidation):
		m.con.Println("输入无效:", err)
	case errors.Is(err, config.ErrConfigWriteFailed):
		m.con.Println("保存失败，修改未写入磁盘:", err)
	default:
		m.logger.Error("action failed", zap.Error(err))
		m.con.Println("操作失败:", err)
	}
}
