// Package theme holds the Levo palette and shared lipgloss styles.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette
var (
	Primary   = lipgloss.Color("#58CC02") // feather green
	Secondary = lipgloss.Color("#1CB0F6") // sky
	Accent    = lipgloss.Color("#FF9600") // streak flame
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#FF4B4B")
	Heart     = lipgloss.Color("#FF4B4B")
	Coin      = lipgloss.Color("#FFC800")
	XP        = lipgloss.Color("#CE82FF")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgDark    = lipgloss.Color("#0F172A")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Menu and answer states.
var (
	Selected   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)
	Disabled   = lipgloss.NewStyle().Foreground(TextDim)
	Correct    = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect  = lipgloss.NewStyle().Foreground(Error).Bold(true)
)

// Lesson map markers.
var (
	LessonDone    = lipgloss.NewStyle().Foreground(Success)
	LessonCurrent = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	LessonLocked  = Disabled
	UnitHeading   = lipgloss.NewStyle().Foreground(Secondary).Bold(true)
)

// Counters shown in the header, home and stats.
var (
	HeartStyle = lipgloss.NewStyle().Foreground(Heart).Bold(true)
	HeartEmpty = lipgloss.NewStyle().Foreground(Border)
	CoinStyle  = lipgloss.NewStyle().Foreground(Coin).Bold(true)
	XPStyle    = lipgloss.NewStyle().Foreground(XP).Bold(true)
	FireStyle  = lipgloss.NewStyle().Foreground(Accent).Bold(true)
)

var (
	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(BgDark).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
			Background(BgCard).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)
)
