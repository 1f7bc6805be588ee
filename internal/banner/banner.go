package banner

import (
	"blazehammer/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

func GetString() string {
	renderer := lipgloss.DefaultRenderer()

	style := renderer.NewStyle().
		Foreground(styles.ColorBanner).
		Bold(true)

	ascii := `
    ____  __                    __  __
   / __ )/ /___ _____  ___     / / / /___ _____ ___  ____ ___  ___  _____
  / __  / / __ '/_  / / _ \   / /_/ / __ '/ __ '__ \/ __ '__ \/ _ \/ ___/
 / /_/ / / /_/ / / /_/  __/  / __  / /_/ / / / / / / / / / / /  __/ /
/_____/_/\__,_/ /___/\___/  /_/ /_/\__,_/_/ /_/ /_/_/ /_/ /_/\___/_/     `

	return "\n" + style.Render(ascii) + "\n"
}

// RenderKey renders a key binding hint such as "<q> quit".
func RenderKey(key, desc string) string {
	return lipgloss.JoinHorizontal(lipgloss.Center,
		styles.KeyKey.Render("<"+key+">"),
		" ",
		styles.KeyDesc.Render(desc),
	)
}
