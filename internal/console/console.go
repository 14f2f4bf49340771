// Package console 行式提示与输出。所有输入都会去掉首尾空白。
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Console 行式提示/应答
type Console interface {
	// Prompt 显示 label 并读取一行，返回去掉首尾空白的内容；输入结束时返回 io.EOF
	Prompt(label string) (string, error)
	Printf(format string, a ...any)
	Println(a ...any)
}

// New stdin 是终端时使用 x/term 的行编辑，否则按普通行读取
func New(in *os.File, out io.Writer) Console {
	if term.IsTerminal(int(in.Fd())) {
		return NewTerminal(in, out)
	}
	return NewLine(in, out)
}

// Line 基于 bufio 的行读取
type Line struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{in: bufio.NewReader(in), out: out}
}

func (c *Line) Prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Line) Printf(format string, a ...any) { fmt.Fprintf(c.out, format, a...) }

func (c *Line) Println(a ...any) { fmt.Fprintln(c.out, a...) }

// Terminal 每次提示时把终端切到 raw 模式，用 term.Terminal 读取一行（支持编辑与历史），读完立即恢复
type Terminal struct {
	in  *os.File
	out io.Writer
	t   *term.Terminal
}

func NewTerminal(in *os.File, out io.Writer) *Terminal {
	rw := struct {
		io.Reader
		io.Writer
	}{in, out}
	return &Terminal{in: in, out: out, t: term.NewTerminal(rw, "")}
}

func (c *Terminal) Prompt(label string) (string, error) {
	fd := int(c.in.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return "", fmt.Errorf("切换终端模式失败: %w", err)
	}
	defer term.Restore(fd, oldState)

	if w, _, err := term.GetSize(fd); err == nil {
		_ = c.t.SetSize(w, 1)
	}
	c.t.SetPrompt(label)
	line, err := c.t.ReadLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Terminal) Printf(format string, a ...any) { fmt.Fprintf(c.out, format, a...) }

func (c *Terminal) Println(a ...any) { fmt.Fprintln(c.out, a...) }
