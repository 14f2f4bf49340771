package models

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultPort 主机与项目都未指定端口时使用
const DefaultPort = "22"

// RowSeparator 选择器中主机行的分隔符，名称中禁止出现
const RowSeparator = " | "

var (
	ErrEmptyName      = errors.New("名称不能为空")
	ErrEmptyAddr      = errors.New("地址不能为空")
	ErrInvalidName    = errors.New("名称包含非法字符")
	ErrInvalidAddr    = errors.New("地址包含非法字符")
	ErrDuplicateName  = errors.New("名称已存在")
	ErrProjectMissing = errors.New("项目不存在")
	ErrHostMissing    = errors.New("主机不存在")
)

// Host 表示一台 SSH 主机；可选字段为空时继承所属项目的默认值
type Host struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Addr string `json:"addr" yaml:"addr" toml:"addr"` // IP 或域名
	User string `json:"user,omitempty" yaml:"user,omitempty" toml:"user,omitempty"`
	Key  string `json:"key,omitempty" yaml:"key,omitempty" toml:"key,omitempty"` // 私钥路径，只存路径
	Port string `json:"port,omitempty" yaml:"port,omitempty" toml:"port,omitempty"`
}

// Project 一组共享默认连接参数的主机
type Project struct {
	Name   string `json:"name" yaml:"name" toml:"name"`
	User   string `json:"user,omitempty" yaml:"user,omitempty" toml:"user,omitempty"`
	Key    string `json:"key,omitempty" yaml:"key,omitempty" toml:"key,omitempty"`
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty" toml:"domain,omitempty"`
	Port   string `json:"port,omitempty" yaml:"port,omitempty" toml:"port,omitempty"`
	Hosts  []Host `json:"hosts" yaml:"hosts" toml:"hosts"`
}

// Inventory 持久化记录：项目列表
type Inventory struct {
	Projects []Project `json:"projects" yaml:"projects" toml:"projects"`
}

// Endpoint 一台主机在继承规则下实际使用的连接参数
type Endpoint struct {
	Project string
	Host    string
	Addr    string
	User    string
	Key     string
	Port    string
	Domain  string
}

// NewInventory 返回空清单 {projects: []}
func NewInventory() *Inventory {
	return &Inventory{Projects: []Project{}}
}

// Normalize 把缺失的列表补成空切片，保证编码结果里不出现 null
func (inv *Inventory) Normalize() {
	if inv.Projects == nil {
		inv.Projects = []Project{}
	}
	for i := range inv.Projects {
		if inv.Projects[i].Hosts == nil {
			inv.Projects[i].Hosts = []Host{}
		}
	}
}

// Project 按名称精确查找；重名时取第一个
func (inv *Inventory) Project(name string) *Project {
	for i := range inv.Projects {
		if inv.Projects[i].Name == name {
			return &inv.Projects[i]
		}
	}
	return nil
}

// Host 按名称在项目内查找
func (p *Project) Host(name string) *Host {
	for i := range p.Hosts {
		if p.Hosts[i].Name == name {
			return &p.Hosts[i]
		}
	}
	return nil
}

// DefaultPort 项目端口，未设置时为 22
func (p *Project) DefaultPort() string {
	if p.Port != "" {
		return p.Port
	}
	return DefaultPort
}

// Effective 按 主机 → 项目 → 全局默认 的顺序解析连接参数
func (p *Project) Effective(h *Host) Endpoint {
	return Endpoint{
		Project: p.Name,
		Host:    h.Name,
		Addr:    h.Addr,
		User:    firstNonEmpty(h.User, p.User),
		Key:     firstNonEmpty(h.Key, p.Key),
		Port:    firstNonEmpty(h.Port, p.DefaultPort()),
		Domain:  p.Domain,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// ValidateName 名称不能为空，不能含换行或行分隔符
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if strings.Contains(name, RowSeparator) || strings.ContainsAny(name, "\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ValidateAddr 地址不能为空，不能含换行
func ValidateAddr(addr string) error {
	if addr == "" {
		return ErrEmptyAddr
	}
	if strings.ContainsAny(addr, "\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidAddr, addr)
	}
	return nil
}

// Validate 检查整个清单：名称合法、项目名全局唯一、主机名项目内唯一、地址必填
func (inv *Inventory) Validate() error {
	seen := make(map[string]bool, len(inv.Projects))
	for _, p := range inv.Projects {
		if err := ValidateName(p.Name); err != nil {
			return fmt.Errorf("项目 %q: %w", p.Name, err)
		}
		if seen[p.Name] {
			return fmt.Errorf("项目 %q: %w", p.Name, ErrDuplicateName)
		}
		seen[p.Name] = true
		hosts := make(map[string]bool, len(p.Hosts))
		for _, h := range p.Hosts {
			if err := ValidateName(h.Name); err != nil {
				return fmt.Errorf("项目 %q 主机 %q: %w", p.Name, h.Name, err)
			}
			if hosts[h.Name] {
				return fmt.Errorf("项目 %q 主机 %q: %w", p.Name, h.Name, ErrDuplicateName)
			}
			hosts[h.Name] = true
			if err := ValidateAddr(h.Addr); err != nil {
				return fmt.Errorf("项目 %q 主机 %q: %w", p.Name, h.Name, err)
			}
		}
	}
	return nil
}

// Prune 去掉与项目默认值相同的主机字段，保持记录最小
func (p *Project) Prune(h *Host) {
	if h.User != "" && h.User == p.User {
		h.User = ""
	}
	if h.Key != "" && h.Key == p.Key {
		h.Key = ""
	}
	if h.Port != "" && h.Port == p.DefaultPort() {
		h.Port = ""
	}
}
