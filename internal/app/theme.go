package app

import "github.com/charmbracelet/lipgloss"

const (
	bubblePaddingVertical   = 0
	bubblePaddingHorizontal = 1
)

var (
	headerStyle          = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	workspaceStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
	workspaceActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
	threadStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	threadUnreadStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("120"))
	threadArchivedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Faint(true)
	selectedStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	dividerStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	processingStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Bold(true)
	cancelingStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	reviewingStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("179")).Bold(true)
	userBubbleStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Background(lipgloss.Color("236")).Padding(bubblePaddingVertical, bubblePaddingHorizontal)
	agentBubbleStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(bubblePaddingVertical, bubblePaddingHorizontal)
	reasoningBubbleStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("237")).Foreground(lipgloss.Color("244")).Faint(true).Padding(bubblePaddingVertical, bubblePaddingHorizontal)
	toolBubbleStyle      = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("237")).Foreground(lipgloss.Color("245")).Padding(bubblePaddingVertical, bubblePaddingHorizontal)
	reviewBubbleStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("179")).Foreground(lipgloss.Color("230")).Padding(bubblePaddingVertical, bubblePaddingHorizontal)
	approvalBorderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("208")).Padding(0, 1)
	promptFrameStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("69")).Padding(0, 1)
	toolStatusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("108"))
	metaStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Faint(true)
)
