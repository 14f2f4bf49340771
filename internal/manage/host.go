package manage

import (
	"fmt"

	"sshmgr/internal/audit"
	"sshmgr/internal/models"
)

// AddHost 在项目下新建主机；与项目默认值相同的字段不保存
func (m *Manager) AddHost(inv *models.Inventory, project *models.Project, in HostFields) (*models.Host, error) {
	in.trim()
	if err := models.ValidateName(in.Name); err != nil {
		return nil, invalid(err)
	}
	if project.Host(in.Name) != nil {
		return nil, invalid(fmt.Errorf("主机 %q 在项目 %q 中%w", in.Name, project.Name, models.ErrDuplicateName))
	}
	if err := models.ValidateAddr(in.Addr); err != nil {
		return nil, invalid(err)
	}
	if err := validatePort(in.Port); err != nil {
		return nil, err
	}

	h := models.Host{Name: in.Name, Addr: in.Addr, User: in.User, Key: in.Key, Port: in.Port}
	project.Prune(&h)
	project.Hosts = append(project.Hosts, h)
	host := &project.Hosts[len(project.Hosts)-1]
	return host, m.Commit(inv, audit.ActionAddHost, project.Name, host.Name)
}

// inherit 计算编辑后主机应保存的值：
// 输入非空且不同于项目默认值时保存输入；等于默认值时删除覆盖；
// 输入为空时保留原值，但原值等于默认值时一并清掉。
func inherit(current, input, projectDefault string) string {
	if input != "" {
		if input == projectDefault {
			return ""
		}
		return input
	}
	if current == projectDefault {
		return ""
	}
	return current
}

// EditHost 名称或地址为空表示不修改；user/key/port 按项目默认值去重
func (m *Manager) EditHost(inv *models.Inventory, project *models.Project, host *models.Host, in HostFields) error {
	in.trim()
	if in.Name != "" && in.Name != host.Name {
		if err := models.ValidateName(in.Name); err != nil {
			return invalid(err)
		}
		if other := project.Host(in.Name); other != nil && other != host {
			return invalid(fmt.Errorf("主机 %q 在项目 %q 中%w", in.Name, project.Name, models.ErrDuplicateName))
		}
	}
	if in.Addr != "" {
		if err := models.ValidateAddr(in.Addr); err != nil {
			return invalid(err)
		}
	}
	if err := validatePort(in.Port); err != nil {
		return err
	}

	if in.Name != "" {
		host.Name = in.Name
	}
	if in.Addr != "" {
		host.Addr = in.Addr
	}
	host.User = inherit(host.User, in.User, project.User)
	host.Key = inherit(host.Key, in.Key, project.Key)
	host.Port = inherit(host.Port, in.Port, project.DefaultPort())
	return m.Commit(inv, audit.ActionEditHost, project.Name, host.Name)
}

// DeleteHost 确认后按名称从项目中删除主机
func (m *Manager) DeleteHost(inv *models.Inventory, project *models.Project, host *models.Host, confirm string) error {
	if !Confirmed(confirm) {
		return ErrNotConfirmed
	}
	name := host.Name
	kept := make([]models.Host, 0, len(project.Hosts))
	for _, h := range project.Hosts {
		if h.Name != name {
			kept = append(kept, h)
		}
	}
	project.Hosts = kept
	return m.Commit(inv, audit.ActionDeleteHost, project.Name, name)
}
