package transfer

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"sshmgr/internal/config"
	"sshmgr/internal/models"
)

// 导出格式
const (
	FormatJSON      = "json"
	FormatYAML      = "yaml"
	FormatTOML      = "toml"
	FormatSSHConfig = "ssh-config"
)

var Formats = []string{FormatJSON, FormatYAML, FormatTOML, FormatSSHConfig}

// Export 把清单按指定格式写到 w。json 与落盘格式完全一致。
func Export(w io.Writer, inv *models.Inventory, format string) error {
	inv.Normalize()
	switch format {
	case FormatJSON:
		data, err := config.Encode(inv)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(inv); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(inv)
	case FormatSSHConfig:
		_, err := io.WriteString(w, SSHConfig(inv))
		return err
	default:
		return fmt.Errorf("不支持的导出格式 %q，可选: %s", format, strings.Join(Formats, ", "))
	}
}

// SSHConfig 生成 ~/.ssh/config 片段，每台主机一个 Host 块，别名为 <项目>.<主机>
func SSHConfig(inv *models.Inventory) string {
	var b bytes.Buffer
	for i := range inv.Projects {
		p := &inv.Projects[i]
		fmt.Fprintf(&b, "# project: %s\n", p.Name)
		for j := range p.Hosts {
			e := p.Effective(&p.Hosts[j])
			fmt.Fprintf(&b, "Host %s\n", alias(p.Name, e.Host))
			fmt.Fprintf(&b, "    HostName %s\n", e.Addr)
			if e.User != "" {
				fmt.Fprintf(&b, "    User %s\n", e.User)
			}
			fmt.Fprintf(&b, "    Port %s\n", e.Port)
			if e.Key != "" {
				fmt.Fprintf(&b, "    IdentityFile %s\n", e.Key)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// alias ssh_config 的 Host 模式不能含空白
func alias(project, host string) string {
	clean := func(s string) string { return strings.Join(strings.Fields(s), "_") }
	return clean(project) + "." + clean(host)
}
