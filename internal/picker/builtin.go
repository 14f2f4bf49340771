package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultListHeight = 12

var (
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true)
	itemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	counterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
)

// Builtin 进程内选择器：输入过滤词，上下键移动，回车确认，Esc 取消
type Builtin struct {
	in  io.Reader
	out io.Writer
}

func NewBuiltin(in io.Reader, out io.Writer) *Builtin {
	return &Builtin{in: in, out: out}
}

func (b *Builtin) Pick(ctx context.Context, prompt string, items []string) (string, error) {
	m := newModel(prompt, items)
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(b.in), tea.WithOutput(b.out))
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("内置选择器运行失败: %w", err)
	}
	fm, ok := final.(model)
	if !ok || fm.cancelled || fm.choice == "" {
		return "", ErrCancelled
	}
	return fm.choice, nil
}

type model struct {
	items     []string
	filtered  []int
	cursor    int
	offset    int
	height    int
	input     textinput.Model
	choice    string
	cancelled bool
}

func newModel(prompt string, items []string) model {
	ti := textinput.New()
	ti.Prompt = prompt + " "
	ti.Focus()
	m := model{items: items, input: ti, height: defaultListHeight}
	m.refilter()
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// 留出提示行与计数行
		if h := msg.Height - 3; h > 0 {
			m.height = h
		}
		m.clampOffset()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if len(m.filtered) == 0 {
				m.cancelled = true
			} else {
				m.choice = m.items[m.filtered[m.cursor]]
			}
			return m, tea.Quit
		case "up", "ctrl+p", "ctrl+k":
			if m.cursor > 0 {
				m.cursor--
			}
			m.clampOffset()
			return m, nil
		case "down", "ctrl+n", "ctrl+j":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			m.clampOffset()
			return m, nil
		}
	}
	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.refilter()
	}
	return m, cmd
}

func (m *model) refilter() {
	terms := strings.Fields(strings.ToLower(m.input.Value()))
	filtered := make([]int, 0, len(m.items))
	for i, item := range m.items {
		if matches(strings.ToLower(item), terms) {
			filtered = append(filtered, i)
		}
	}
	m.filtered = filtered
	m.cursor = 0
	m.offset = 0
}

func (m *model) clampOffset() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// matches 每个过滤词都需作为子串出现（不区分大小写）
func matches(item string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(item, t) {
			return false
		}
	}
	return true
}

func (m model) View() string {
	if m.choice != "" || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(counterStyle.Render(fmt.Sprintf("  %d/%d", len(m.filtered), len(m.items))))
	b.WriteString("\n")
	end := m.offset + m.height
	if end > len(m.filtered) {
		end = len(m.filtered)
	}
	for i := m.offset; i < end; i++ {
		line := m.items[m.filtered[i]]
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + line))
		} else {
			b.WriteString(itemStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render("  ↑/↓ 移动 · 回车确认 · Esc 取消"))
	return b.String()
}
