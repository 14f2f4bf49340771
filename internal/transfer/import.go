package transfer

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"sshmgr/internal/models"
)

// Decode 按文件扩展名解析 JSON 或 YAML 格式的清单
func Decode(name string, data []byte) (*models.Inventory, error) {
	var inv models.Inventory
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &inv); err != nil {
			return nil, fmt.Errorf("解析 YAML 失败: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &inv); err != nil {
			return nil, fmt.Errorf("解析 JSON 失败: %w", err)
		}
	}
	inv.Normalize()
	return &inv, nil
}

// Result 导入统计
type Result struct {
	ProjectsAdded   int
	ProjectsUpdated int
	HostsAdded      int
	HostsUpdated    int
}

// Merge 把 incoming 合并进 inv，返回新的清单，inv 本身不变。
// replace 为 true 时直接替换全部；否则按项目名合并：
// 项目已存在则用非空字段覆盖默认值，主机按名称更新或追加；项目不存在则追加。
// 合并结果必须通过 Validate。
func Merge(inv, incoming *models.Inventory, replace bool) (*models.Inventory, Result, error) {
	var res Result
	if err := incoming.Validate(); err != nil {
		return nil, res, fmt.Errorf("导入内容无效: %w", err)
	}
	if replace {
		out := clone(incoming)
		for _, p := range out.Projects {
			res.ProjectsAdded++
			res.HostsAdded += len(p.Hosts)
		}
		pruneAll(out)
		return out, res, nil
	}

	out := clone(inv)
	for _, in := range incoming.Projects {
		target := out.Project(in.Name)
		if target == nil {
			out.Projects = append(out.Projects, cloneProject(in))
			res.ProjectsAdded++
			res.HostsAdded += len(in.Hosts)
			continue
		}
		res.ProjectsUpdated++
		overlay(&target.User, in.User)
		overlay(&target.Key, in.Key)
		overlay(&target.Domain, in.Domain)
		overlay(&target.Port, in.Port)
		for _, h := range in.Hosts {
			if existing := target.Host(h.Name); existing != nil {
				*existing = h
				res.HostsUpdated++
			} else {
				target.Hosts = append(target.Hosts, h)
				res.HostsAdded++
			}
		}
	}
	pruneAll(out)
	if err := out.Validate(); err != nil {
		return nil, res, fmt.Errorf("合并结果无效: %w", err)
	}
	return out, res, nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func pruneAll(inv *models.Inventory) {
	for i := range inv.Projects {
		p := &inv.Projects[i]
		for j := range p.Hosts {
			p.Prune(&p.Hosts[j])
		}
	}
}

func clone(inv *models.Inventory) *models.Inventory {
	out := &models.Inventory{Projects: make([]models.Project, 0, len(inv.Projects))}
	for _, p := range inv.Projects {
		out.Projects = append(out.Projects, cloneProject(p))
	}
	return out
}

func cloneProject(p models.Project) models.Project {
	p.Hosts = append([]models.Host{}, p.Hosts...)
	return p
}
