package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Bold(true).
			Padding(1, 2)
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Padding(1, 2)
	dangerModalStyle = modalStyle.
				BorderForeground(lipgloss.Color("#FF6B6B"))
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))
	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#5B8DEF")).
				Bold(true)
	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#444444")).
			Padding(0, 2)
	focusedButtonStyle = buttonStyle.
				Background(lipgloss.Color("#4CAF50"))
	dangerButtonStyle = buttonStyle.
				Background(lipgloss.Color("#FF6B6B"))
	disabledButtonStyle = buttonStyle.
				Foreground(lipgloss.Color("#777777")).
				Background(lipgloss.Color("#2A2A2A"))
	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#222222")).
			Background(lipgloss.Color("#DDDDDD")).
			Padding(0, 1)
	selectedTagStyle = tagStyle.
				Background(lipgloss.Color("#5B8DEF")).
				Foreground(lipgloss.Color("#FFFFFF"))
	unknownTagStyle = tagStyle.
			Background(lipgloss.Color("#FF6B6B")).
			Foreground(lipgloss.Color("#FFFFFF"))
)
