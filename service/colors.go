package service

// languageColors maps language names to their conventional display
// colors (subset of popular languages). Unknown languages share one
// fallback color.
var languageColors = map[string]string{
	"JavaScript": "#f1e05a",
	"TypeScript": "#3178c6",
	"Python":     "#3572A5",
	"Java":       "#b07219",
	"C++":        "#f34b7d",
	"C":          "#555555",
	"C#":         "#178600",
	"Go":         "#00ADD8",
	"Rust":       "#dea584",
	"Ruby":       "#701516",
	"PHP":        "#4F5D95",
	"Swift":      "#F05138",
	"Kotlin":     "#A97BFF",
	"Dart":       "#00B4AB",
	"Shell":      "#89e051",
	"HTML":       "#e34c26",
	"CSS":        "#563d7c",
	"Vue":        "#41b883",
	"Svelte":     "#ff3e00",
	"Jupyter":    "#DA5B0B",
	"R":          "#198CE7",
	"Scala":      "#c22d40",
	"Elixir":     "#6e4a7e",
	"Haskell":    "#5e5086",
	"Lua":        "#000080",
	"Perl":       "#0298c3",
	"Objective":  "#438eff",
}

const fallbackLanguageColor = "#8b949e"

// GetLanguageColor returns the display color for a language name
func GetLanguageColor(language string) string {
	if color, found := languageColors[language]; found {
		return color
	}

	return fallbackLanguageColor
}
