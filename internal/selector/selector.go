package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sshmgr/internal/models"
	"sshmgr/internal/picker"
)

var (
	ErrNoProjects         = errors.New("没有项目，请先添加项目")
	ErrNoHosts            = errors.New("没有主机")
	ErrSelectionCancelled = errors.New("未选择")
	ErrBadRow             = errors.New("无法解析选中的行")
)

// ProjectNames 按清单顺序返回项目名
func ProjectNames(inv *models.Inventory) []string {
	names := make([]string, 0, len(inv.Projects))
	for _, p := range inv.Projects {
		names = append(names, p.Name)
	}
	return names
}

// HostRows 每台主机一行："<项目> | <主机> | <地址>"，先按项目顺序再按主机顺序
func HostRows(inv *models.Inventory) []string {
	var rows []string
	for _, p := range inv.Projects {
		for _, h := range p.Hosts {
			rows = append(rows, FormatRow(p.Name, h.Name, h.Addr))
		}
	}
	return rows
}

func FormatRow(project, host, addr string) string {
	return strings.Join([]string{project, host, addr}, models.RowSeparator)
}

// ParseRow 拆成恰好三段，地址只用于展示，解析时丢弃
func ParseRow(row string) (project, host string, err error) {
	parts := strings.SplitN(row, models.RowSeparator, 3)
	if len(parts) != 3 {
		return "", "", fmt.Errorf("%w: %q", ErrBadRow, row)
	}
	return parts[0], parts[1], nil
}

// pick 调用选择器，把取消和找不到程序统一包装成 ErrSelectionCancelled
func pick(ctx context.Context, p picker.Picker, prompt string, items []string) (string, error) {
	selected, err := p.Pick(ctx, prompt, items)
	if err != nil {
		if errors.Is(err, picker.ErrCancelled) {
			return "", ErrSelectionCancelled
		}
		if errors.Is(err, picker.ErrToolMissing) {
			return "", fmt.Errorf("%w: %w", ErrSelectionCancelled, err)
		}
		return "", err
	}
	return selected, nil
}

// PickProject 让用户选一个项目；返回的指针指向清单内的元素
func PickProject(ctx context.Context, p picker.Picker, inv *models.Inventory, prompt string) (*models.Project, error) {
	names := ProjectNames(inv)
	if len(names) == 0 {
		return nil, ErrNoProjects
	}
	selected, err := pick(ctx, p, prompt, names)
	if err != nil {
		return nil, err
	}
	project := inv.Project(selected)
	if project == nil {
		return nil, fmt.Errorf("%w: %q", models.ErrProjectMissing, selected)
	}
	return project, nil
}

// PickHost 让用户选一台主机，按项目名再按主机名解析
func PickHost(ctx context.Context, p picker.Picker, inv *models.Inventory, prompt string) (*models.Project, *models.Host, error) {
	rows := HostRows(inv)
	if len(rows) == 0 {
		return nil, nil, ErrNoHosts
	}
	selected, err := pick(ctx, p, prompt, rows)
	if err != nil {
		return nil, nil, err
	}
	projectName, hostName, err := ParseRow(selected)
	if err != nil {
		return nil, nil, err
	}
	project := inv.Project(projectName)
	if project == nil {
		return nil, nil, fmt.Errorf("%w: %q", models.ErrProjectMissing, projectName)
	}
	host := project.Host(hostName)
	if host == nil {
		return nil, nil, fmt.Errorf("%w: %q", models.ErrHostMissing, hostName)
	}
	return project, host, nil
}
