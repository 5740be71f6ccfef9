package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/ledger"
	"github.com/lox/blackjack/internal/table"
)

// Client handles table requests for a session. *table.Service implements it.
type Client interface {
	Handle(ctx context.Context, session string, req table.Request) table.Response
}

// responseMsg carries a finished request back into the update loop
type responseMsg struct {
	req  table.Request
	resp table.Response
}

// Model is the Bubble Tea model for a single player at a blackjack table
type Model struct {
	ctx     context.Context
	client  Client
	session string
	table   string
	logger  *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog     []string
	view        *game.View
	balance     game.Money
	stats       *ledger.Stats
	lastBet     game.Money
	pending     bool
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool
}

// NewModel creates a model that plays session at the named table. An empty
// table name uses the service default.
func NewModel(ctx context.Context, client Client, session, tableName string, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "bet 10"
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 64
	ti.PromptStyle = lipgloss.NewStyle().Foreground(focusColor).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		ctx:         ctx,
		client:      client,
		session:     session,
		table:       tableName,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		actionInput: ti,
		focusedPane: 1,
	}
}

// Run starts the interactive program and blocks until the player quits or
// ctx is cancelled.
func Run(ctx context.Context, client Client, session, tableName string, logger *log.Logger) error {
	m := NewModel(ctx, client, session, tableName, logger)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init loads any round left over from a previous run
func (m *Model) Init() tea.Cmd {
	m.addLog(HeaderStyle.Render(" Blackjack ") + " " + InfoStyle.Render("session "+m.session))
	m.addLog(InfoStyle.Render(helpText))
	return tea.Batch(textinput.Blink, m.send(table.Request{Action: table.ActionGetState}))
}

// send runs req against the client off the update loop
func (m *Model) send(req table.Request) tea.Cmd {
	m.pending = true
	ctx, client, session := m.ctx, m.client, m.session
	return func() tea.Msg {
		return responseMsg{req: req, resp: client.Handle(ctx, session, req)}
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case responseMsg:
		m.pending = false
		m.handleResponse(msg.req, msg.resp)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				line := m.actionInput.Value()
				m.actionInput.SetValue("")
				if cmd := m.submit(line); cmd != nil {
					return m, cmd
				}
				return m, nil
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit parses a line of input and returns the command that sends it
func (m *Model) submit(line string) tea.Cmd {
	if m.pending {
		return nil
	}

	c, err := parseCommand(line, m.lastBet)
	if err != nil {
		m.addLog(ErrorStyle.Render(err.Error()))
		return nil
	}

	switch {
	case c.quit:
		m.quitting = true
		return tea.Quit
	case c.help:
		m.addLog(InfoStyle.Render(helpText))
		return nil
	case c.table != "":
		m.table = c.table
		m.addLog(fmt.Sprintf("Next deal at table %s", WarningStyle.Render(c.table)))
		return nil
	}

	req := c.request
	if req.Action == game.ActionStartGame.String() {
		req.Table = m.table
		m.lastBet = req.Bet
	}
	m.addLog(InfoStyle.Render("> " + describeRequest(req)))
	return m.send(req)
}

func describeRequest(req table.Request) string {
	if req.Bet > 0 {
		return fmt.Sprintf("%s %d", req.Action, req.Bet)
	}
	return req.Action
}

// handleResponse records the outcome of a request in the log and the sidebar
func (m *Model) handleResponse(req table.Request, resp table.Response) {
	m.balance = resp.Balance
	if !resp.Success {
		m.logger.Debug("Request failed", "action", req.Action, "code", resp.Code, "error", resp.Error)
		m.addLog(ErrorStyle.Render(fmt.Sprintf("%s: %s", resp.Code, resp.Error)))
		return
	}
	if resp.Stats != nil {
		m.stats = resp.Stats
	}

	switch req.Action {
	case table.ActionGetStats:
		m.addLog(renderStats(resp.Stats))
		return
	case table.ActionEndSession:
		m.view = nil
		m.addLog(SuccessStyle.Render(fmt.Sprintf("Session ended with balance $%d", resp.Balance)))
		return
	}

	if resp.GameState == nil {
		return
	}
	m.view = resp.GameState

	v := resp.GameState
	switch {
	case v.State == game.GameOver && v.Result != nil:
		m.addLog(m.renderTable(v))
		m.addLog(renderResult(v.Result))
	case v.State == game.PlayerTurn:
		m.addLog(m.renderTable(v))
	case req.Action == game.ActionNewGame.String():
		m.addLog(InfoStyle.Render("Table cleared"))
	}
}

func (m *Model) addLog(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.GotoBottom()
}

// Log returns the game log
func (m *Model) Log() []string {
	return m.gameLog
}

// Balance returns the balance from the last response
func (m *Model) Balance() game.Money {
	return m.balance
}

// Phase returns the phase of the current round
func (m *Model) Phase() game.Phase {
	if m.view == nil {
		return game.Betting
	}
	return m.view.State
}
