package quiz

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/levo/internal/ui/components"
	"github.com/abhisek/levo/internal/ui/layout"
	"github.com/abhisek/levo/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	if s.confirmQuit {
		return renderQuitConfirm(width)
	}
	switch s.phase {
	case phaseLoading:
		return renderStatus(width, theme.TextDim, "Preparing your questions...")
	case phaseFinishing:
		return renderStatus(width, theme.TextDim, "Saving your result...")
	case phaseError:
		return renderStatus(width, theme.Error,
			fmt.Sprintf("Error: %s\n\nPress any key to go back.", s.errMsg))
	case phaseNoHearts:
		return s.renderNoHearts(width)
	}
	return s.renderQuestion(width)
}

func (s *QuizScreen) renderQuestion(width int) string {
	var b strings.Builder

	hs := s.app.Hearts.State()
	infoLeft := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("  Question %d/%d", s.index+1, len(s.questions)))
	infoRight := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s %d   %s",
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			s.tally.Correct,
			layout.HeartsLabel(hs.Current, hs.Max, hs.Premium)))

	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")

	bar := components.NewProgressBar("", components.Fraction(s.index, len(s.questions)), false, max(width-8, 10))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	cw := components.ContentWidth(width)
	if s.passage != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			components.Card(lipgloss.NewStyle().Foreground(theme.Text).Width(cw-4).Render(s.passage), cw)))
		b.WriteString("\n\n")
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Render(s.choice.View())))

	switch s.phase {
	case phaseGrading:
		b.WriteString("\n")
		b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.TextDim), "Checking..."))
	case phaseFeedback:
		b.WriteString("\n")
		b.WriteString(s.renderFeedback(width))
	default:
		if s.notice != "" {
			b.WriteString("\n")
			b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Error), s.notice))
		}
	}

	return b.String()
}

func (s *QuizScreen) renderFeedback(width int) string {
	var b strings.Builder
	o := s.outcome

	if o.Correct {
		b.WriteString(center(width, theme.Correct.Bold(true), "Correct!"))
		if o.XPEarned > 0 {
			b.WriteString("\n")
			b.WriteString(center(width, theme.XPStyle, fmt.Sprintf("+%d XP", o.XPEarned)))
		}
	} else {
		b.WriteString(center(width, theme.Incorrect.Bold(true), "Not quite"))
		q := s.questions[s.index]
		if o.CorrectIndex >= 0 && o.CorrectIndex < len(q.Options) {
			b.WriteString("\n")
			b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.TextDim),
				fmt.Sprintf("Correct answer: %s", q.Options[o.CorrectIndex])))
		}
	}
	b.WriteString("\n\n")

	if o.Explanation != "" {
		exp := lipgloss.NewStyle().Width(min(width-8, 70)).Foreground(theme.Text).Render(o.Explanation)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, exp))
		b.WriteString("\n\n")
	}

	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.TextDim), "Press any key to continue..."))
	return b.String()
}

func (s *QuizScreen) renderNoHearts(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(center(width, theme.HeartStyle.Bold(true), "♥ Out of hearts"))
	b.WriteString("\n\n")

	msg := "Wait for a heart to refill, or get more now."
	if eta := s.app.Hearts.State().NextRefill; eta != nil {
		msg = fmt.Sprintf("Next heart in %s, or get more now.", *eta)
	}
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Text), msg))
	b.WriteString("\n\n")
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Primary), "[H] Get hearts"))
	b.WriteString("\n")
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.TextDim), "[Esc] Leave"))
	return b.String()
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true), "Leave now?"))
	b.WriteString("\n")
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.TextDim), "Answers so far will not be saved."))
	b.WriteString("\n\n")
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Success), "[Y] Yes, leave"))
	b.WriteString("\n")
	b.WriteString(center(width, lipgloss.NewStyle().Foreground(theme.Primary), "[N] No, keep going"))
	return b.String()
}

func renderStatus(width int, fg color.Color, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(fg).
		Render("\n\n\n" + text)
}

func center(width int, st lipgloss.Style, text string) string {
	return st.Width(width).Align(lipgloss.Center).Render(text)
}
