package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sshmgr/internal/audit"
	"sshmgr/internal/config"
	"sshmgr/internal/models"
	"sshmgr/internal/transfer"
)

func newExportCmd(a *app) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "导出清单为 json、yaml、toml 或 ssh_config 片段",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(transfer.Formats, format) {
				return fmt.Errorf("不支持的格式 %q，可选: %s", format, strings.Join(transfer.Formats, ", "))
			}
			inv, err := a.store.Load()
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return transfer.Export(cmd.OutOrStdout(), inv, format)
			}
			f, err := os.OpenFile(output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
			if err != nil {
				return fmt.Errorf("创建导出文件失败: %w", err)
			}
			if err := transfer.Export(f, inv, format); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			a.logger.Info("inventory exported", zap.String("format", format), zap.String("path", output))
			fmt.Fprintf(cmd.OutOrStdout(), "已导出到 %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", transfer.FormatJSON, "导出格式: "+strings.Join(transfer.Formats, ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件，默认写到标准输出")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "从 JSON 或 YAML 文件导入项目和主机",
		Long: `从 JSON 或 YAML 文件导入清单，文件扩展名为 .yaml/.yml 时按 YAML 解析，其余按 JSON 解析。

默认按项目名合并：已有项目用非空字段覆盖默认值，主机按名称更新或追加。
--replace 直接用文件内容替换整份清单。保存前会先备份当前记录。`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readImport(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			incoming, err := transfer.Decode(args[0], data)
			if err != nil {
				return err
			}

			current, err := a.store.Load()
			if err != nil {
				// 替换模式不依赖原内容；合并模式下合并到空清单会丢掉原记录
				if !replace || !errors.Is(err, config.ErrConfigUnreadable) {
					return err
				}
				current = models.NewInventory()
			}

			merged, res, err := transfer.Merge(current, incoming, replace)
			if err != nil {
				return err
			}
			if err := a.manager().Commit(merged, audit.ActionImport, "", ""); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "导入完成: 新增项目 %d，更新项目 %d，新增主机 %d，更新主机 %d\n",
				res.ProjectsAdded, res.ProjectsUpdated, res.HostsAdded, res.HostsUpdated)
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "用导入内容替换整份清单")
	return cmd
}

// readImport 读取导入文件，"-" 表示标准输入（按 JSON 解析）
func readImport(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("读取导入文件失败: %w", err)
	}
	return data, nil
}
