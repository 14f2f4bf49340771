package picker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Fzf 通过外部 fzf 进程选择
type Fzf struct {
	path string
}

func NewFzf(path string) *Fzf {
	if path == "" {
		path = "fzf"
	}
	return &Fzf{path: path}
}

// Pick 把 items 按行写入 fzf 的标准输入，读取选中的行。
// fzf 退出码 1（无匹配）和 130（Esc/Ctrl-C）都视为取消。
func (f *Fzf) Pick(ctx context.Context, prompt string, items []string) (string, error) {
	bin, err := exec.LookPath(f.path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolMissing, f.path)
	}
	cmd := exec.CommandContext(ctx, bin, "--prompt", prompt+" ")
	cmd.Stdin = strings.NewReader(strings.Join(items, "\n"))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			switch exitErr.ExitCode() {
			case 1, 130:
				return "", ErrCancelled
			}
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("fzf 执行失败: %w: %s", err, msg)
		}
		return "", fmt.Errorf("fzf 执行失败: %w", err)
	}
	selected := strings.TrimRight(stdout.String(), "\r\n")
	if selected == "" {
		return "", ErrCancelled
	}
	return selected, nil
}
