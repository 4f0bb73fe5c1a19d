// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Shared colors so build, up and make output look alike.
const (
	colorAccent  = lipgloss.Color("#0D9488")
	colorMuted   = lipgloss.Color("#6B7280")
	colorSuccess = lipgloss.Color("#10B981")
	colorPath    = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle renders headers, such as the version banner.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	// CmdStyle renders command names, image tags and artifact paths.
	CmdStyle = lipgloss.NewStyle().
			Foreground(colorPath)
)
