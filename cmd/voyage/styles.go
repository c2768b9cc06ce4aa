package main

import "github.com/charmbracelet/lipgloss"

var (
	ColorSurface = lipgloss.Color("#1E2A3A")
	ColorMuted   = lipgloss.Color("#7A8BA0")
	ColorText    = lipgloss.Color("#E2E8F0")
	ColorAccent  = lipgloss.Color("#176FF3")
	ColorRed     = lipgloss.Color("#F38BA8")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(ColorMuted)

	CrumbStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(ColorText).
				Background(ColorAccent)

	NormalRowStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	DetailStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			Width(16)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(ColorMuted)

	HelpKeyStyle  = lipgloss.NewStyle().Foreground(ColorAccent)
	HelpDescStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)
