// Package tui implements the interactive chat interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/kbchat-cli/internal/core/domain"
	"github.com/custodia-labs/kbchat-cli/internal/core/ports/driving"
)

// Styles for the chat transcript.
var (
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sourceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// answerMsg delivers a finished query result to the update loop.
type answerMsg domain.QueryResult

// Chat is the bubbletea model for the chat session.
type Chat struct {
	pipeline     driving.Pipeline
	historyLimit int

	// history is the model-visible conversation, bounded to
	// 2*historyLimit entries.
	history    []domain.ChatMessage
	transcript []string

	viewport viewport.Model
	input    textinput.Model
	waiting  bool
	ready    bool
	width    int
	height   int
}

// NewChat creates the chat model over a pipeline.
func NewChat(pipeline driving.Pipeline, historyLimit int) *Chat {
	input := textinput.New()
	input.Placeholder = "Ask a question..."
	input.Focus()
	input.CharLimit = 2000

	return &Chat{
		pipeline:     pipeline,
		historyLimit: historyLimit,
		input:        input,
	}
}

// Init implements tea.Model.
func (c *Chat) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (c *Chat) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		inputHeight := 3
		if !c.ready {
			c.viewport = viewport.New(msg.Width, msg.Height-inputHeight)
			c.ready = true
		} else {
			c.viewport.Width = msg.Width
			c.viewport.Height = msg.Height - inputHeight
		}
		c.input.Width = msg.Width - 4
		c.refreshViewport()
		return c, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return c, tea.Quit
		case tea.KeyEnter:
			return c, c.submit()
		}

	case answerMsg:
		c.receive(domain.QueryResult(msg))
		return c, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	cmds = append(cmds, cmd)
	c.viewport, cmd = c.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return c, tea.Batch(cmds...)
}

// submit sends the current input as a question.
func (c *Chat) submit() tea.Cmd {
	question := strings.TrimSpace(c.input.Value())
	if question == "" || c.waiting {
		return nil
	}

	c.input.Reset()
	c.waiting = true
	c.transcript = append(c.transcript,
		userStyle.Render("You: ")+question,
		"",
	)
	c.refreshViewport()

	pipeline := c.pipeline
	history := c.history
	return func() tea.Msg {
		return answerMsg(pipeline.QueryWithHistory(context.Background(), question, history, 0))
	}
}

// receive folds a result into the transcript and the bounded history.
func (c *Chat) receive(result domain.QueryResult) {
	c.waiting = false

	if result.Failed() {
		c.transcript = append(c.transcript, errorStyle.Render(result.Answer), "")
	} else {
		c.transcript = append(c.transcript, botStyle.Render("Bot: ")+result.Answer)
		if len(result.Sources) > 0 {
			c.transcript = append(c.transcript,
				sourceStyle.Render("Sources: "+strings.Join(result.Sources, ", ")))
		}
		c.transcript = append(c.transcript, "")

		// Failed exchanges are not added: retrying the same question
		// should not poison the history.
		c.history = append(c.history,
			domain.ChatMessage{Role: domain.RoleUser, Content: result.CleanQuery},
			domain.ChatMessage{Role: domain.RoleAssistant, Content: result.Answer},
		)
		c.history = domain.TrimHistory(c.history, c.historyLimit)
	}

	c.refreshViewport()
}

// refreshViewport re-renders the transcript and pins scroll to the bottom.
func (c *Chat) refreshViewport() {
	if !c.ready {
		return
	}
	content := strings.Join(c.transcript, "\n")
	if c.waiting {
		content += "\n" + helpStyle.Render("Thinking...")
	}
	c.viewport.SetContent(lipgloss.NewStyle().Width(c.viewport.Width).Render(content))
	c.viewport.GotoBottom()
}

// View implements tea.Model.
func (c *Chat) View() string {
	if !c.ready {
		return "Starting..."
	}
	return fmt.Sprintf("%s\n%s\n%s",
		c.viewport.View(),
		c.input.View(),
		helpStyle.Render("Enter to send · Esc to quit"),
	)
}

// History exposes the bounded conversation history.
func (c *Chat) History() []domain.ChatMessage {
	return c.history
}
