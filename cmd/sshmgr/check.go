package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"sshmgr/internal/keycheck"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "离线检查每台主机使用的私钥文件",
		Long: `逐台主机检查生效的私钥文件：是否存在、能否解析、是否加密、权限是否宽于 0600。
只读取本地文件，不连接任何主机。发现问题时以非零状态退出。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := a.store.Load()
			if err != nil {
				return err
			}
			findings := keycheck.Inspect(inv)

			problems := 0
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("项目", "主机", "私钥", "状态", "指纹/详情")
			for _, f := range findings {
				if f.Problem() {
					problems++
				}
				detail := f.Fingerprint
				if detail == "" {
					detail = f.Detail
				}
				t.Row(f.Endpoint.Project, f.Endpoint.Host, f.Path, string(f.Status), detail)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())

			if problems > 0 {
				return fmt.Errorf("%d 台主机的私钥有问题", problems)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "检查了 %d 台主机，未发现问题\n", len(findings))
			return nil
		},
	}
}
