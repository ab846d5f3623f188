package viz

import "github.com/charmbracelet/lipgloss"

var (
	trackStyle  = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(40)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)

	markerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	targetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00"))

	statusCoasting = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	statusTouching = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
	statusIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
)
