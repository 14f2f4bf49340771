package manage

import (
	"fmt"

	"sshmgr/internal/audit"
	"sshmgr/internal/models"
)

// AddProject 新建项目，只保存非空的可选字段
func (m *Manager) AddProject(inv *models.Inventory, in ProjectFields) (*models.Project, error) {
	in.trim()
	if err := models.ValidateName(in.Name); err != nil {
		return nil, invalid(err)
	}
	if inv.Project(in.Name) != nil {
		return nil, invalid(fmt.Errorf("项目 %q %w", in.Name, models.ErrDuplicateName))
	}
	if err := validatePort(in.Port); err != nil {
		return nil, err
	}

	inv.Projects = append(inv.Projects, models.Project{
		Name:   in.Name,
		User:   in.User,
		Key:    in.Key,
		Domain: in.Domain,
		Port:   in.Port,
		Hosts:  []models.Host{},
	})
	project := &inv.Projects[len(inv.Projects)-1]
	return project, m.Commit(inv, audit.ActionAddProject, project.Name, "")
}

// EditProject 名称为空表示不改名；可选字段非空则覆盖，为空则删除该默认值。
// 主机上与新默认值相同的覆盖随之删除，生效值不变。
func (m *Manager) EditProject(inv *models.Inventory, project *models.Project, in ProjectFields) error {
	in.trim()
	if in.Name != "" && in.Name != project.Name {
		if err := models.ValidateName(in.Name); err != nil {
			return invalid(err)
		}
		if other := inv.Project(in.Name); other != nil && other != project {
			return invalid(fmt.Errorf("项目 %q %w", in.Name, models.ErrDuplicateName))
		}
	}
	if err := validatePort(in.Port); err != nil {
		return err
	}

	if in.Name != "" {
		project.Name = in.Name
	}
	project.User = in.User
	project.Key = in.Key
	project.Domain = in.Domain
	project.Port = in.Port
	for i := range project.Hosts {
		project.Prune(&project.Hosts[i])
	}
	return m.Commit(inv, audit.ActionEditProject, project.Name, "")
}

// DeleteProject 确认后按名称删除项目及其全部主机
func (m *Manager) DeleteProject(inv *models.Inventory, project *models.Project, confirm string) error {
	if !Confirmed(confirm) {
		return ErrNotConfirmed
	}
	name := project.Name
	kept := make([]models.Project, 0, len(inv.Projects))
	for _, p := range inv.Projects {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	inv.Projects = kept
	return m.Commit(inv, audit.ActionDeleteProject, name, "")
}
