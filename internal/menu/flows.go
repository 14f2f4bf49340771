package menu

import (
	"context"
	"fmt"

	"sshmgr/internal/manage"
	"sshmgr/internal/models"
	"sshmgr/internal/selector"
)

// prompter 连续提问，遇到第一个错误后不再读取
type prompter struct {
	m   *Menu
	err error
}

func (p *prompter) ask(format string, a ...any) string {
	if p.err != nil {
		return ""
	}
	var s string
	s, p.err = p.m.con.Prompt(fmt.Sprintf(format, a...))
	return s
}

func (m *Menu) addHost(ctx context.Context, inv *models.Inventory) error {
	m.con.Println("\n--- 添加主机 ---")
	project, err := selector.PickProject(ctx, m.picker, inv, "选择要添加主机的项目:")
	if err != nil {
		return err
	}
	p := &prompter{m: m}
	in := manage.HostFields{
		Name: p.ask("主机名 (例如 web-server-01): "),
		Addr: p.ask("主机地址 (IP 或域名): "),
	}
	in.Port = p.ask("端口 (默认: %s): ", project.DefaultPort())
	in.User = p.ask("用户 (默认: %s): ", project.User)
	in.Key = p.ask("SSH 私钥路径 (默认: %s): ", project.Key)
	if p.err != nil {
		return p.err
	}
	host, err := m.mgr.AddHost(inv, project, in)
	if err != nil {
		return err
	}
	m.con.Printf("主机 %s 已添加到项目 %s。\n", host.Name, project.Name)
	return nil
}

func (m *Menu) editHost(ctx context.Context, inv *models.Inventory) error {
	m.con.Println("\n--- 编辑主机 ---")
	project, host, err := selector.PickHost(ctx, m.picker, inv, "选择要编辑的主机:")
	if err != nil {
		return err
	}
	eff := project.Effective(host)
	m.con.Printf("正在编辑主机: %s (项目: %s)\n", host.Name, project.Name)
	p := &prompter{m: m}
	in := manage.HostFields{
		Name: p.ask("新主机名 (当前: %s): ", host.Name),
		Addr: p.ask("新地址 (当前: %s): ", host.Addr),
		Port: p.ask("新端口 (当前: %s): ", eff.Port),
		User: p.ask("新用户 (当前: %s): ", eff.User),
		Key:  p.ask("新私钥路径 (当前: %s): ", eff.Key),
	}
	if p.err != nil {
		return p.err
	}
	if err := m.mgr.EditHost(inv, project, host, in); err != nil {
		return err
	}
	m.con.Printf("主机 %s 已更新。\n", host.Name)
	return nil
}

func (m *Menu) deleteHost(ctx context.Context, inv *models.Inventory) error {
	m.con.Println("\n--- 删除主机 ---")
	project, host, err := selector.PickHost(ctx, m.picker, inv, "选择要删除的主机:")
	if err != nil {
		return err
	}
	name := host.Name
	confirm, err := m.con.Prompt(fmt.Sprintf("确定要从项目 '%s' 删除主机 '%s' 吗? (yes/no): ", project.Name, name))
	if err != nil {
		return err
	}
	if err := m.mgr.DeleteHost(inv, project, host, confirm); err != nil {
		return err
	}
	m.con.Printf("主机 %s 已从项目 %s 删除。\n", name, project.Name)
	return nil
}

func (m *Menu) addProject(inv *models.Inventory) error {
	m.con.Println("\n--- 添加项目 ---")
	p := &prompter{m: m}
	in := manage.ProjectFields{Name: p.ask("项目名: ")}
	in.Port = p.ask("项目默认端口 (默认: %s，可留空): ", models.DefaultPort)
	in.User = p.ask("项目默认用户 (可留空): ")
	in.Key = p.ask("项目默认 SSH 私钥路径 (可留空): ")
	in.Domain = p.ask("项目默认域名 (例如 example.com，可留空): ")
	if p.err != nil {
		return p.err
	}
	project, err := m.mgr.AddProject(inv, in)
	if err != nil {
		return err
	}
	m.con.Printf("项目 '%s' 已添加。\n", project.Name)
	return nil
}

func (m *Menu) editProject(ctx context.Context, inv *models.Inventory) error {
	m.con.Println("\n--- 编辑项目 ---")
	project, err := selector.PickProject(ctx, m.picker, inv, "选择要编辑的项目:")
	if err != nil {
		return err
	}
	m.con.Printf("正在编辑项目: %s\n", project.Name)
	p := &prompter{m: m}
	in := manage.ProjectFields{
		Name:   p.ask("新项目名 (当前: %s): ", project.Name),
		User:   p.ask("新默认用户 (当前: %s，留空则清除): ", project.User),
		Key:    p.ask("新默认私钥路径 (当前: %s，留空则清除): ", project.Key),
		Domain: p.ask("新默认域名 (当前: %s，留空则清除): ", project.Domain),
		Port:   p.ask("新默认端口 (当前: %s，留空则恢复 %s): ", project.DefaultPort(), models.DefaultPort),
	}
	if p.err != nil {
		return p.err
	}
	if err := m.mgr.EditProject(inv, project, in); err != nil {
		return err
	}
	m.con.Printf("项目 %s 已更新。\n", project.Name)
	return nil
}

func (m *Menu) deleteProject(ctx context.Context, inv *models.Inventory) error {
	m.con.Println("\n--- 删除项目 ---")
	project, err := selector.PickProject(ctx, m.picker, inv, "选择要删除的项目:")
	if err != nil {
		return err
	}
	name := project.Name
	confirm, err := m.con.Prompt(fmt.Sprintf("确定要删除项目 '%s' 及其全部主机吗? (yes/no): ", name))
	if err != nil {
		return err
	}
	if err := m.mgr.DeleteProject(inv, project, confirm); err != nil {
		return err
	}
	m.con.Printf("项目 '%s' 已删除。\n", name)
	return nil
}
