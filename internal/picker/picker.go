// Package picker 让用户从若干行中选出一行。
//
// 默认调用外部 fzf；也提供基于 bubbletea 的内置实现，fzf 不存在时可自动回退。
// 内置选择器直接读取 stdin，与 console 共用输入，因此只在 stdin 是终端时可用。
package picker

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"golang.org/x/term"
)

var (
	// ErrCancelled 用户取消或没有选中任何行
	ErrCancelled = errors.New("未选择")
	// ErrToolMissing 找不到选择器程序
	ErrToolMissing = errors.New("找不到选择器程序")
	// ErrNotInteractive stdin 不是终端，内置选择器无法使用
	ErrNotInteractive = errors.New("内置选择器需要终端")
)

// Picker 给定提示与行列表，返回选中的那一行；取消时返回 ErrCancelled
type Picker interface {
	Pick(ctx context.Context, prompt string, items []string) (string, error)
}

// Kind 选择器类型，取值与设置中的 picker 相同
type Kind string

const (
	KindFzf     Kind = "fzf"
	KindBuiltin Kind = "builtin"
	KindAuto    Kind = "auto"
)

// StdinIsTerminal 内置选择器能否使用
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// New 按类型创建选择器。auto 时 fzf 可用则用 fzf，stdin 是终端时回退到内置选择器，
// 否则仍返回 fzf，由 Pick 报告 ErrToolMissing。
func New(kind Kind, fzfPath string) Picker {
	return newPicker(kind, fzfPath, StdinIsTerminal())
}

func newPicker(kind Kind, fzfPath string, interactive bool) Picker {
	switch kind {
	case KindBuiltin:
		return NewBuiltin(os.Stdin, os.Stderr)
	case KindAuto:
		if _, err := exec.LookPath(fzfPath); err == nil || !interactive {
			return NewFzf(fzfPath)
		}
		return NewBuiltin(os.Stdin, os.Stderr)
	default:
		return NewFzf(fzfPath)
	}
}

// Static 按顺序返回预设答案，用于测试和非交互场景；空字符串表示取消
type Static struct {
	Answers []string
	Prompts []string
	Items   [][]string
}

func (s *Static) Pick(ctx context.Context, prompt string, items []string) (string, error) {
	s.Prompts = append(s.Prompts, prompt)
	s.Items = append(s.Items, append([]string(nil), items...))
	if len(s.Answers) == 0 {
		return "", io.EOF
	}
	ans := s.Answers[0]
	s.Answers = s.Answers[1:]
	if ans == "" {
		return "", ErrCancelled
	}
	return ans, nil
}
