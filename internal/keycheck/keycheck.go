// Package keycheck 离线检查主机实际使用的私钥文件：是否存在、能否解析、是否加密、权限是否过宽。
// 只读本地文件，不建立任何连接，也不保存私钥内容。
package keycheck

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/crypto/ssh"

	"sshmgr/internal/models"
)

type Status string

const (
	StatusOK        Status = "ok"
	StatusNoKey     Status = "no-key"
	StatusMissing   Status = "missing"
	StatusEncrypted Status = "encrypted"
	StatusInvalid   Status = "invalid"
	StatusTooOpen   Status = "too-open"
)

// Finding 单台主机的检查结果
type Finding struct {
	Endpoint    models.Endpoint
	Path        string // 展开 ~ 之后的路径
	Status      Status
	Fingerprint string
	Detail      string
}

// Problem 除 ok、no-key、encrypted 以外都算问题
func (f Finding) Problem() bool {
	switch f.Status {
	case StatusOK, StatusNoKey, StatusEncrypted:
		return false
	}
	return true
}

// ExpandHome 把开头的 ~/ 换成用户主目录
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Check 检查单个私钥文件
func Check(path string) Finding {
	f := Finding{Path: ExpandHome(path)}
	if path == "" {
		f.Status = StatusNoKey
		return f
	}
	info, err := os.Stat(f.Path)
	if err != nil {
		f.Status = StatusMissing
		f.Detail = err.Error()
		return f
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		f.Status = StatusInvalid
		f.Detail = err.Error()
		return f
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			// 加密私钥：只在公钥可用时给出指纹
			f.Status = StatusEncrypted
			if missing.PublicKey != nil {
				f.Fingerprint = ssh.FingerprintSHA256(missing.PublicKey)
			}
			return f
		}
		f.Status = StatusInvalid
		f.Detail = err.Error()
		return f
	}
	f.Fingerprint = ssh.FingerprintSHA256(signer.PublicKey())
	// ssh 客户端会拒绝组或其他用户可读的私钥
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o077 != 0 {
		f.Status = StatusTooOpen
		f.Detail = "权限为 " + info.Mode().Perm().String() + "，建议 chmod 600"
		return f
	}
	f.Status = StatusOK
	return f
}

// Inspect 按清单顺序检查每台主机的实际私钥，同一路径只读取一次
func Inspect(inv *models.Inventory) []Finding {
	cache := make(map[string]Finding)
	var out []Finding
	for i := range inv.Projects {
		p := &inv.Projects[i]
		for j := range p.Hosts {
			e := p.Effective(&p.Hosts[j])
			f, ok := cache[e.Key]
			if !ok {
				f = Check(e.Key)
				cache[e.Key] = f
			}
			f.Endpoint = e
			out = append(out, f)
		}
	}
	return out
}
