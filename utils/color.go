package utils

import (
	"strconv"
	"strings"

	"discord-modbot/model"

	"github.com/rs/zerolog/log"
)

// ParseHexColor parses a hex color string (like "#FACF24") into an integer for Discord embeds.
// Returns the default red color (0xff0000) if parsing fails.
func ParseHexColor(hexColor string) int {
	if hexColor == "" {
		return 0xff0000 // Default red color
	}

	hexColor = strings.TrimPrefix(hexColor, "#")

	colorInt, err := strconv.ParseInt(hexColor, 16, 64)
	if err != nil {
		log.Warn().Err(err).Str("color", hexColor).Msg("failed to parse hex color")
		return 0xff0000
	}

	return int(colorInt)
}

var actionColors = map[model.ActionKind]string{
	model.ActionBan:           "#E74C3C",
	model.ActionTempBan:       "#E67E22",
	model.ActionUnban:         "#2ECC71",
	model.ActionKick:          "#F39C12",
	model.ActionTimeout:       "#9B59B6",
	model.ActionTimeoutAdjust: "#8E44AD",
	model.ActionUnTimeout:     "#1ABC9C",
	model.ActionWarn:          "#F1C40F",
	model.ActionNote:          "#95A5A6",
}

// ActionColor returns the embed color used for a moderation action.
func ActionColor(kind model.ActionKind) int {
	return ParseHexColor(actionColors[kind])
}
