package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/ledger"
)

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)

	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(focusColor).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(focusColor)
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane shows the balance, table and shoe
func (m *Model) renderSidebarPane() string {
	var content strings.Builder

	content.WriteString(WarningStyle.Render(fmt.Sprintf("Balance: $%d", m.balance)))
	content.WriteString("\n")
	tableName := m.table
	if tableName == "" {
		tableName = "default"
	}
	content.WriteString(InfoStyle.Render("Table: " + tableName))
	content.WriteString("\n")

	if m.view != nil {
		r := m.view.Rules
		fmt.Fprintf(&content, "Bets $%d-$%d\n", r.MinBet, r.MaxBet)
		if r.Decks > 0 {
			fmt.Fprintf(&content, "%d deck %s\n", r.Decks, r.DealStyle)
		}
		if shoe := m.view.Shoe; shoe != nil {
			fmt.Fprintf(&content, "Shoe: %d/%d", shoe.Remaining, shoe.OriginalSize)
			if shoe.NeedsReshuffle {
				content.WriteString(" " + WarningStyle.Render("cut card"))
			}
			content.WriteString("\n")
		}
	}

	if m.stats != nil {
		s := m.stats.Session
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render("This session"))
		content.WriteString("\n")
		fmt.Fprintf(&content, "W %d  P %d  L %d\n", s.GamesWon, s.GamesPushed, s.GamesLost)
	}

	return content.String()
}

// renderActionPane shows the live round and the input
func (m *Model) renderActionPane() string {
	var content strings.Builder

	if v := m.view; v != nil && len(v.Hands) > 0 {
		content.WriteString(m.renderTable(v))
		content.WriteString("\n")
	}

	switch m.Phase() {
	case game.PlayerTurn:
		content.WriteString(renderAvailableActions(m.view.Actions))
		m.actionInput.Placeholder = "hit, stand, double, split, surrender"
	case game.GameOver:
		content.WriteString(HandInfoStyle.Render("Round over"))
		m.actionInput.Placeholder = "Enter to deal again, 'bet N' to change the bet"
	default:
		content.WriteString(HandInfoStyle.Render("Place your bet"))
		m.actionInput.Placeholder = "bet 10"
	}
	content.WriteString("\n")

	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	if m.focusedPane == 0 {
		content.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		content.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}

	return content.String()
}

// renderTable draws the dealer and every player hand, marking the active one
func (m *Model) renderTable(v *game.View) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Dealer %s", formatCards(v.Dealer.Cards, v.Dealer.Hidden))
	if len(v.Dealer.Cards) > 0 {
		fmt.Fprintf(&b, " %s", formatScore(v.Dealer))
	}

	for i, h := range v.Hands {
		b.WriteString("\n")
		label := fmt.Sprintf("Hand %d", i+1)
		if len(v.Hands) == 1 {
			label = "You"
		}
		line := fmt.Sprintf("%s %s %s  $%d", label, formatCards(h.Cards, 0), formatScore(h), h.Bet)
		switch {
		case h.Doubled:
			line += " doubled"
		case h.Surrendered:
			line += " surrendered"
		}
		if v.State == game.PlayerTurn && i == v.CurrentHand {
			line = ActiveHandStyle.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
	}
	return b.String()
}

func renderAvailableActions(c game.Capabilities) string {
	var actions []string
	if c.CanHit {
		actions = append(actions, SuccessStyle.Render("[hit]"))
	}
	if c.CanStand {
		actions = append(actions, SuccessStyle.Render("[stand]"))
	}
	if c.CanDouble {
		actions = append(actions, WarningStyle.Render("[double]"))
	}
	if c.CanSplit {
		actions = append(actions, WarningStyle.Render("[split]"))
	}
	if c.CanSurrender {
		actions = append(actions, ErrorStyle.Render("[surrender]"))
	}
	if len(actions) == 0 {
		return InfoStyle.Render("[no actions available]")
	}
	return strings.Join(actions, " ")
}

func renderResult(r *game.Settlement) string {
	var b strings.Builder
	for _, h := range r.Hands {
		fmt.Fprintf(&b, "  Hand %d: %s (bet $%d, paid $%d)\n", h.Hand+1, h.Outcome, h.Bet, h.Won)
	}
	summary := fmt.Sprintf("Round %s: net %+d", r.Outcome, r.Net)
	b.WriteString(outcomeStyle(r.Outcome).Render(summary))
	return b.String()
}

func renderStats(stats *ledger.Stats) string {
	if stats == nil {
		return ""
	}
	line := func(name string, c ledger.Counters) string {
		return fmt.Sprintf("%s: %d played, %d won, %d pushed, %d lost (%.1f%%), wagered $%d, net %+d",
			name, c.GamesPlayed, c.GamesWon, c.GamesPushed, c.GamesLost, c.WinRate(),
			c.TotalWagered, c.TotalWon-c.TotalLost)
	}
	return strings.Join([]string{
		WarningStyle.Render(fmt.Sprintf("Balance $%d", stats.Balance)),
		line("Session", stats.Session),
		line("Lifetime", stats.Lifetime),
	}, "\n")
}
