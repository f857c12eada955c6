package player

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var scorePrinter = message.NewPrinter(language.English)

// FormatTime renders elapsed playback time for the HUD as M:SS, or
// H:MM:SS once an hour has passed.
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatScore renders a score per the experience's display format:
// "plain" (12345), "padded" (012345) or the default grouped form (12,345).
func FormatScore(score int, format string) string {
	switch format {
	case "plain":
		return strconv.Itoa(score)
	case "padded":
		return fmt.Sprintf("%06d", score)
	default:
		return scorePrinter.Sprintf("%d", score)
	}
}
