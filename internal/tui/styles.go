// Package tui renders playback in an interactive terminal viewer.
package tui

import "github.com/charmbracelet/lipgloss"

// Role color scheme - each role has a distinct, consistent color.
var (
	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10")) // Green - user

	assistantStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")) // White - assistant

	thinkingStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("8")) // Gray - thinking

	animationStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("8")) // Gray - placeholder frame

	toolStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")) // Blue - tool calls

	toolResultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")) // Blue dim - tool results

	approvalPendingStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("11")) // Yellow - pending gate

	approvalApprovedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("10")) // Green - approved gate

	subagentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("13")) // Magenta - subagents

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")) // White - message bodies

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")) // Gray - metadata

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)
