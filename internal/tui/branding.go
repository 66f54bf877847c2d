package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/gallr/internal/config"
)

const AppName = "gallr"

// LogoLines is the block letter logo, one entry per row.
var LogoLines = []string{
	" ▄████▄   ▄████▄  ██      ██      ██████▄",
	"██    ▀  ██    ██ ██      ██      ██   ██",
	"██  ▄▄▄  ████████ ██      ██      ██████▀",
	"██    ██ ██    ██ ██      ██      ██  ▀█▄",
	" ▀████▀  ██    ██ ███████ ███████ ██   ██",
}

const CompactLogo = `gallr ›`

// Banner gradient colors
var BannerColors = []lipgloss.Color{
	lipgloss.Color("#FF6B6B"),
	lipgloss.Color("#FFA86B"),
	lipgloss.Color("#95E1D3"),
	lipgloss.Color("#4ECDC4"),
	lipgloss.Color("#FF6B6B"),
}

var (
	PrimaryColor   = lipgloss.Color("#FF6B6B")
	SecondaryColor = lipgloss.Color("#4ECDC4")
	AccentColor    = lipgloss.Color("#95E1D3")

	BackgroundColor = lipgloss.Color("#1A1A2E")
	SurfaceColor    = lipgloss.Color("#16213E")
	TextColor       = lipgloss.Color("#EAEAEA")
	MutedColor      = lipgloss.Color("#94A3B8")

	HighlightColor = lipgloss.Color("#FFE66D")
	ErrorColor     = lipgloss.Color("#EF4444")
	SuccessColor   = lipgloss.Color("#10B981")
)

var (
	LogoStyle          lipgloss.Style
	TitleStyle         lipgloss.Style
	HeaderStyle        lipgloss.Style
	StatusBarStyle     lipgloss.Style
	FavoriteStyle      lipgloss.Style
	TagStyle           lipgloss.Style
	SelectedItemStyle  lipgloss.Style
	HelpStyle          lipgloss.Style
	TimeStyle          lipgloss.Style
	ModalBoxStyle      lipgloss.Style
	ModalTitleStyle    lipgloss.Style
	LoadMoreStyle      lipgloss.Style
	ErrorMessageStyle  lipgloss.Style
	SeparatorStyle     lipgloss.Style
	StatusInfoStyle    lipgloss.Style
	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style
	EmptyStyle         lipgloss.Style
)

func init() {
	buildStyles()
}

func buildStyles() {
	LogoStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	TitleStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Bold(true).
		Padding(0, 2)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Padding(0, 1)

	FavoriteStyle = lipgloss.NewStyle().
		Foreground(HighlightColor).
		Bold(true)

	TagStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	SelectedItemStyle = lipgloss.NewStyle().
		Foreground(BackgroundColor).
		Background(AccentColor).
		Bold(true)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	TimeStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Faint(true)

	ModalBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(AccentColor).
		Padding(0, 1)

	ModalTitleStyle = lipgloss.NewStyle().
		Foreground(HighlightColor).
		Bold(true)

	LoadMoreStyle = lipgloss.NewStyle().
		Foreground(AccentColor).
		Italic(true)

	ErrorMessageStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	SeparatorStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusInfoStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessColor)

	StatusWarnStyle = lipgloss.NewStyle().
		Foreground(HighlightColor)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	EmptyStyle = lipgloss.NewStyle()
}

// ApplyColors replaces the palette with the configured colors. Empty entries
// keep their defaults.
func ApplyColors(c config.UIColors) {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&PrimaryColor, c.Primary)
	set(&SecondaryColor, c.Secondary)
	set(&AccentColor, c.Accent)
	set(&BackgroundColor, c.Background)
	set(&SurfaceColor, c.Surface)
	set(&TextColor, c.Text)
	set(&MutedColor, c.Muted)
	set(&ErrorColor, c.Error)
	set(&SuccessColor, c.Success)
	buildStyles()
}

// ContentWrapper returns a style for wrapping content with width and height constraints
func ContentWrapper(width, height int) lipgloss.Style {
	return EmptyStyle.Width(width).Height(height).MaxHeight(height)
}

func GetWelcomeMessage() string {
	return GetCompactBanner("Type a query and press enter to search")
}

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

// Banner renders the logo, tagline and version inside a double border.
func Banner(version string) string {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)

	versionTag := version
	if versionTag != "" && versionTag != "dev" {
		if versionTag[0] != 'v' && versionTag[0] != 'V' {
			versionTag = "v" + versionTag
		}
		lines = append(lines, fmt.Sprintf("    Terminal Image Gallery %s", versionTag))
	} else {
		lines = append(lines, "    Terminal Image Gallery")
	}

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}
		style := lipgloss.NewStyle().
			Foreground(BannerColors[i%len(BannerColors)]).
			Bold(i < len(LogoLines))
		coloredLines = append(coloredLines, style.Render(line))
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		MarginTop(1)

	output := borderStyle.Render(lipgloss.JoinVertical(lipgloss.Center, coloredLines...))

	separator := lipgloss.NewStyle().
		Foreground(AccentColor).
		Render("◆ ◇ ◆ ◇ ◆")

	center := lipgloss.NewStyle().Width(70).Align(lipgloss.Center)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		center.Render(output),
		center.MarginBottom(1).Render(separator),
	)
}

func ShowBanner(version string) {
	fmt.Println(Banner(version))
}
