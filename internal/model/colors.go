package model

import "math/rand/v2"

// CardColors is the palette new cards pick from when no color is given.
var CardColors = []string{
	"#FFF07C", // yellow
	"#8DE683", // green
	"#7EE8FA", // cyan
	"#C0C2ED", // lavender
	"#E58C8A", // salmon
	"#EDEFDE", // ivory
	"#808F87", // sage
	"#F4B266", // orange
}

// RandomCardColor returns a random color from CardColors.
func RandomCardColor() string {
	return CardColors[rand.IntN(len(CardColors))]
}

// IsPaletteColor reports whether color is one of CardColors.
func IsPaletteColor(color string) bool {
	for _, c := range CardColors {
		if c == color {
			return true
		}
	}
	return false
}
