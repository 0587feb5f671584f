package cli

import "strings"

const (
	KeyQuit     = "q"
	KeyCtrlC    = "ctrl+c"
	KeyEscape   = "esc"
	KeyBack     = "backspace"
	KeyUp       = "up"
	KeyUpAlt    = "k"
	KeyDown     = "down"
	KeyDownAlt  = "j"
	KeyEnter    = "enter"
	KeyRefresh  = "r"
	KeyPageUp   = "pgup"
	KeyPageDown = "pgdown"
)

type HelpItem struct {
	Key  string
	Desc string
}

func BuildHelpText(items []HelpItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.Key + " " + item.Desc
	}
	return HelpStyle.Render("  " + strings.Join(parts, "  "))
}

var (
	HelpNav     = HelpItem{Key: "↑/↓", Desc: "navigate"}
	HelpOpen    = HelpItem{Key: "Enter", Desc: "open"}
	HelpBack    = HelpItem{Key: "Esc", Desc: "back"}
	HelpRefresh = HelpItem{Key: "r", Desc: "refresh"}
	HelpQuit    = HelpItem{Key: "q", Desc: "quit"}
)

func HelpDomains() string {
	return BuildHelpText([]HelpItem{HelpNav, HelpOpen, HelpRefresh, HelpQuit})
}

func HelpRecords() string {
	return BuildHelpText([]HelpItem{HelpNav, HelpBack, HelpRefresh, HelpQuit})
}
