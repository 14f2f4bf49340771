package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"sshmgr/internal/models"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [PROJECT]",
		Short: "以表格列出主机及其生效的连接参数",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// 清单损坏时 Load 返回错误，只读命令直接失败而不是输出空清单
			inv, err := a.store.Load()
			if err != nil {
				return err
			}
			projects := inv.Projects
			if len(args) == 1 {
				p := inv.Project(args[0])
				if p == nil {
					return fmt.Errorf("%w: %s", models.ErrProjectMissing, args[0])
				}
				projects = []models.Project{*p}
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("项目", "主机", "地址", "用户", "端口", "私钥")
			for i := range projects {
				p := &projects[i]
				for j := range p.Hosts {
					e := p.Effective(&p.Hosts[j])
					t.Row(e.Project, e.Host, e.Addr, e.User, e.Port, e.Key)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show PROJECT HOST",
		Short: "显示单台主机继承项目默认值后的连接参数",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := a.store.Load()
			if err != nil {
				return err
			}
			p := inv.Project(args[0])
			if p == nil {
				return fmt.Errorf("%w: %s", models.ErrProjectMissing, args[0])
			}
			h := p.Host(args[1])
			if h == nil {
				return fmt.Errorf("%w: %s", models.ErrHostMissing, args[1])
			}
			e := p.Effective(h)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "项目: %s\n", e.Project)
			fmt.Fprintf(out, "主机: %s\n", e.Host)
			fmt.Fprintf(out, "地址: %s\n", e.Addr)
			fmt.Fprintf(out, "用户: %s\n", orNone(e.User))
			fmt.Fprintf(out, "端口: %s\n", e.Port)
			fmt.Fprintf(out, "私钥: %s\n", orNone(e.Key))
			if e.Domain != "" {
				fmt.Fprintf(out, "域名: %s\n", e.Domain)
			}
			return nil
		},
	}
}

func orNone(v string) string {
	if v == "" {
		return "(未设置)"
	}
	return v
}
