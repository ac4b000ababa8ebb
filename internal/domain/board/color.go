package board

import (
	"strconv"
	"strings"

	"github.com/okian/scoreview/internal/domain/model"
)

const (
	DefaultBalloonBackground = "#1890ff"
	DefaultBalloonText       = "#fff"
)

// Luminance returns the perceived brightness of a CSS colour in [0, 1].
// Unparseable colours report 0.5.
func Luminance(color string) float64 {
	r, g, b, ok := parseColor(strings.TrimSpace(strings.ToLower(color)))
	if !ok {
		return 0.5
	}
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
}

// ContrastColor picks black text on bright backgrounds and white otherwise.
func ContrastColor(background string) string {
	if Luminance(background) > 0.5 {
		return "#000"
	}
	return "#fff"
}

// Balloon is the colour pair for a problem badge.
type Balloon struct {
	Background string `json:"background_color"`
	Text       string `json:"color"`
}

// BalloonFor returns problem i's colours, falling back to the default pair.
func BalloonFor(cfg model.ContestConfig, i int) Balloon {
	if i < 0 || i >= len(cfg.BalloonColor) || cfg.BalloonColor[i].BackgroundColor == "" {
		return Balloon{Background: DefaultBalloonBackground, Text: DefaultBalloonText}
	}
	bc := cfg.BalloonColor[i]
	text := bc.Color
	if text == "" {
		text = ContrastColor(bc.BackgroundColor)
	}
	return Balloon{Background: bc.BackgroundColor, Text: text}
}

func parseColor(c string) (r, g, b int, ok bool) {
	switch {
	case strings.HasPrefix(c, "#"):
		return parseHex(c[1:])
	case strings.HasPrefix(c, "rgb"):
		open, end := strings.IndexByte(c, '('), strings.IndexByte(c, ')')
		if open < 0 || end < open {
			return 0, 0, 0, false
		}
		parts := strings.Split(c[open+1:end], ",")
		if len(parts) < 3 {
			return 0, 0, 0, false
		}
		var vals [3]int
		for i := range vals {
			n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
			if err != nil || n < 0 || n > 255 {
				return 0, 0, 0, false
			}
			vals[i] = n
		}
		return vals[0], vals[1], vals[2], true
	}
	return 0, 0, 0, false
}

func parseHex(h string) (r, g, b int, ok bool) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
