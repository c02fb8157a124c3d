package components

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

const bannerArt = `███████╗██╗  ██╗ █████╗ ███╗   ███╗██╗███╗   ██╗ █████╗
██╔════╝╚██╗██╔╝██╔══██╗████╗ ████║██║████╗  ██║██╔══██╗
█████╗   ╚███╔╝ ███████║██╔████╔██║██║██╔██╗ ██║███████║
██╔══╝   ██╔██╗ ██╔══██║██║╚██╔╝██║██║██║╚██╗██║██╔══██║
███████╗██╔╝ ██╗██║  ██║██║ ╚═╝ ██║██║██║ ╚████║██║  ██║
╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝     ╚═╝╚═╝╚═╝  ╚═══╝╚═╝  ╚═╝`

const bannerCompact = "E · X · A · M · I · N · A"

// Banner renders the EXAMINA block letters in c, falling back to spaced
// capitals when width is too narrow or compact is set.
func Banner(width int, compact bool, c color.Color) string {
	style := lipgloss.NewStyle().Foreground(c).Bold(true)
	if compact || width < lipgloss.Width(bannerArt) {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
