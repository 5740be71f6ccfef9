package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/muesli/termenv"
)

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	HandInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ActiveHandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	RedCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	BlackCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	focusColor  = lipgloss.Color("#04B575")
	borderColor = lipgloss.Color("#626262")
)

// SetColor picks the renderer's color profile. Disabled color renders plain
// ASCII; otherwise the profile comes from the environment, which honours
// NO_COLOR and CLICOLOR_FORCE.
func SetColor(enabled bool) {
	if !enabled {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.EnvColorProfile())
}

// formatCards formats cards with colors
func formatCards(cards []deck.Card, hidden int) string {
	formatted := make([]string, 0, len(cards)+hidden)
	for _, card := range cards {
		if card.IsRed() {
			formatted = append(formatted, RedCardStyle.Render(card.Pretty()))
		} else {
			formatted = append(formatted, BlackCardStyle.Render(card.Pretty()))
		}
	}
	for range hidden {
		formatted = append(formatted, InfoStyle.Render("??"))
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

func formatScore(h game.HandView) string {
	switch {
	case h.Blackjack:
		return "blackjack"
	case h.Busted:
		return fmt.Sprintf("%d bust", h.Score)
	case h.Soft:
		return fmt.Sprintf("soft %d", h.Score)
	default:
		return fmt.Sprintf("%d", h.Score)
	}
}

func outcomeStyle(outcome game.RoundOutcome) lipgloss.Style {
	switch outcome {
	case game.RoundWon:
		return SuccessStyle
	case game.RoundLost:
		return ErrorStyle
	default:
		return WarningStyle
	}
}
