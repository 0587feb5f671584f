package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/lite-lake/infra-dnsdesk/internal/domain/entity"
)

const (
	ColorPrimary    = "#7C3AED"
	ColorSuccess    = "#10B981"
	ColorWarning    = "#F59E0B"
	ColorError      = "#EF4444"
	ColorSecondary  = "#6B7280"
	ColorBgSelected = "#1E1B4B"
)

var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var (
	BaseStyle = lipgloss.NewStyle().Padding(1, 2)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorPrimary)).
			Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorPrimary))

	SelectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorPrimary)).
			Background(lipgloss.Color(ColorBgSelected)).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondary))

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondary))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSuccess))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorWarning))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError)).
			Bold(true)

	CellStyle = lipgloss.NewStyle().Padding(0, 1)

	ScrollIndicatorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorSecondary)).
				Padding(0, 1)

	LoadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorPrimary)).
			Bold(true).
			Padding(1, 2)
)

// StatusStyle colours a domain row by its status.
func StatusStyle(status entity.DomainStatus) lipgloss.Style {
	switch status {
	case entity.DomainStatusOK:
		return SuccessStyle
	case entity.DomainStatusNotConfigured:
		return MutedStyle
	case entity.DomainStatusAuthFailed:
		return ErrorStyle
	default:
		return WarningStyle
	}
}
