package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"shopping-lists/internal/assistant"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4CAF50")).Padding(0, 1)
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#61AFEF")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#98C379"))
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75"))
)

// replyMsg carries the outcome of one Send back into Update.
type replyMsg struct {
	msg assistant.Message
	err error
}

// Chat is the terminal conversation with the assistant. Input is not
// accepted while a reply is pending.
type Chat struct {
	ctx       context.Context
	assistant *assistant.Assistant

	input   textinput.Model
	spinner spinner.Model
	pending bool
	err     error
	width   int
}

// NewChat creates the chat model for a.
func NewChat(ctx context.Context, a *assistant.Assistant) *Chat {
	in := textinput.New()
	in.Placeholder = "Crea un menú semanal"
	in.Prompt = "› "
	in.CharLimit = 280
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Chat{
		ctx:       ctx,
		assistant: a,
		input:     in,
		spinner:   sp,
		width:     80,
	}
}

func (c *Chat) Init() tea.Cmd {
	return textinput.Blink
}

func (c *Chat) send(text string) tea.Cmd {
	return func() tea.Msg {
		m, err := c.assistant.Send(c.ctx, text)
		return replyMsg{msg: m, err: err}
	}
}

func (c *Chat) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.input.Width = max(20, msg.Width-4)
		return c, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return c, tea.Quit
		case "enter":
			text := strings.TrimSpace(c.input.Value())
			if c.pending || text == "" {
				return c, nil
			}
			c.pending = true
			c.err = nil
			c.input.Reset()
			return c, tea.Batch(c.spinner.Tick, c.send(text))
		}

	case replyMsg:
		c.pending = false
		c.err = msg.err
		return c, nil

	case spinner.TickMsg:
		if !c.pending {
			return c, nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		return c, cmd
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *Chat) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🛒 Asistente de compras"))
	b.WriteString("\n\n")

	body := lipgloss.NewStyle().Width(max(20, c.width-2))
	for _, m := range c.assistant.History() {
		if m.Role == assistant.RoleUser {
			b.WriteString(userStyle.Render("Tú: "))
			b.WriteString(body.Render(m.Text))
		} else {
			b.WriteString(assistantStyle.Render("Asistente: "))
			b.WriteString(body.Render(m.Text))
		}
		b.WriteString("\n\n")
	}

	if c.pending {
		b.WriteString(c.spinner.View() + " Pensando...\n\n")
	}
	if c.err != nil {
		b.WriteString(errorStyle.Render(c.err.Error()) + "\n\n")
	}

	b.WriteString(c.input.View())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter: enviar · esc: salir"))
	return b.String()
}
