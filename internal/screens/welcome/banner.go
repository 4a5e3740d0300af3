package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/levo/internal/ui/theme"
)

const bannerArt = `
██╗     ███████╗██╗   ██╗ ██████╗
██║     ██╔════╝██║   ██║██╔═══██╗
██║     █████╗  ██║   ██║██║   ██║
██║     ██╔══╝  ╚██╗ ██╔╝██║   ██║
███████╗███████╗ ╚████╔╝ ╚██████╔╝
╚══════╝╚══════╝  ╚═══╝   ╚═════╝`

const bannerCompact = "L E V O"

// RenderBanner returns the LEVO banner styled in the primary color.
// Narrow terminals get the compact form.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 40 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
