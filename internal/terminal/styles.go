package terminal

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4500")).
			Bold(true)

	cellStyle = lipgloss.NewStyle().
			Width(5).
			Align(lipgloss.Center).
			Border(lipgloss.NormalBorder())

	xStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00BFFF")).Bold(true)
	oStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6347")).Bold(true)
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
	winStyle   = lipgloss.NewStyle().Background(lipgloss.Color("#FFD700")).Foreground(lipgloss.Color("#000000")).Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)
