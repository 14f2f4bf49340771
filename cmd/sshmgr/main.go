// Package main 实现 sshmgr 命令行：默认进入交互菜单，另有导出、导入、检查等子命令。
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sshmgr/internal/audit"
	"sshmgr/internal/config"
	"sshmgr/internal/console"
	"sshmgr/internal/logging"
	"sshmgr/internal/manage"
	"sshmgr/internal/menu"
	"sshmgr/internal/picker"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app 每次执行命令时根据设置和参数构建
type app struct {
	settingsPath  string
	inventoryPath string
	pickerKind    string
	logLevel      string

	settings *config.Settings
	logger   *zap.Logger
	store    *config.Store
	journal  *audit.Journal
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "sshmgr",
		Short: "管理按项目分组的 SSH 主机清单",
		Long: `sshmgr 维护一份按项目分组的 SSH 主机清单（默认 ~/.config/ssh_manager/hosts.json）。

主机未设置的用户、私钥、端口会继承所在项目的默认值，端口最终默认为 22。
不带子命令时进入交互菜单，通过 fzf（或内置选择器）选择项目和主机。

示例:
  # 进入交互菜单
  sshmgr

  # 使用内置选择器
  sshmgr --picker builtin

  # 导出为 ssh_config 片段
  sshmgr export --format ssh-config`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) { a.teardown() },
		RunE:              a.runMenu,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.settingsPath, "settings", "", "设置文件路径（默认 ~/.config/ssh_manager/settings.yaml）")
	flags.StringVar(&a.inventoryPath, "inventory", "", "清单文件路径，覆盖设置中的 inventory_path")
	flags.StringVar(&a.pickerKind, "picker", "", "选择器: fzf、builtin 或 auto")
	flags.StringVar(&a.logLevel, "log-level", "", "诊断日志级别: debug、info、warn、error")

	root.AddCommand(
		newMenuCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newCheckCmd(a),
		newVersionCmd(),
	)
	return root
}

func newMenuCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "进入交互菜单（默认行为）",
		Args:  cobra.NoArgs,
		RunE:  a.runMenu,
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本",
		Args:  cobra.NoArgs,
		// 不需要加载设置
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sshmgr %s\n", version)
		},
	}
}

// setup 加载设置，命令行参数优先于设置文件和环境变量
func (a *app) setup(cmd *cobra.Command, args []string) error {
	s, err := config.LoadSettings(a.settingsPath)
	if err != nil {
		return err
	}
	if a.inventoryPath != "" {
		s.SetInventoryPath(a.inventoryPath)
	}
	if a.pickerKind != "" {
		s.Picker = a.pickerKind
	}
	if a.logLevel != "" {
		s.Log.Level = a.logLevel
	}
	if err := s.Validate(); err != nil {
		return err
	}
	a.settings = s

	logger, err := logging.NewWithWriter(logging.Config{Level: s.Log.Level, Format: s.Log.Format}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logger = logger
	a.store = config.NewStore(s.InventoryPath)

	a.journal = audit.Nop()
	if s.Journal.Enabled {
		j, err := audit.Open(s.Journal.Path)
		if err != nil {
			a.logger.Warn("change journal disabled", zap.Error(err))
		} else {
			a.journal = j
		}
	}
	a.logger.Debug("settings loaded",
		zap.String("inventory", s.InventoryPath),
		zap.String("picker", s.Picker),
		zap.Bool("journal", s.Journal.Enabled))
	return nil
}

func (a *app) teardown() {
	if a.journal != nil {
		_ = a.journal.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *app) manager() *manage.Manager {
	return manage.New(a.store, a.journal, a.logger)
}

// newPicker 进入菜单前确认选择器可用，避免菜单每一轮都报同样的错误
func (a *app) newPicker() (picker.Picker, error) {
	kind := picker.Kind(a.settings.Picker)
	switch kind {
	case picker.KindFzf:
		if _, err := exec.LookPath(a.settings.FzfPath); err != nil {
			return nil, fmt.Errorf("%w: %s（请安装 fzf，或使用 --picker builtin）", picker.ErrToolMissing, a.settings.FzfPath)
		}
	case picker.KindBuiltin:
		if !picker.StdinIsTerminal() {
			return nil, fmt.Errorf("%w（stdin 不是终端，请改用 --picker fzf）", picker.ErrNotInteractive)
		}
	}
	return picker.New(kind, a.settings.FzfPath), nil
}

func (a *app) runMenu(cmd *cobra.Command, args []string) error {
	p, err := a.newPicker()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	con := console.New(os.Stdin, cmd.OutOrStdout())
	m := menu.New(a.store, a.manager(), p, con, a.logger)
	if err := m.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
