package overlay

import (
	"fmt"
	"strings"
)

// RenderAlert produces the alert widget frame.
func RenderAlert(v AlertView) string {
	var b strings.Builder
	if v.Current == nil {
		b.WriteString("\n")
	} else {
		if v.Current.Icon != "" {
			fmt.Fprintf(&b, "%s ", v.Current.Icon)
		}
		fmt.Fprintf(&b, "%s\n", v.Current.Title)
		if v.Current.Message != "" {
			fmt.Fprintf(&b, "%s\n", v.Current.Message)
		}
	}
	if v.Queued > 0 {
		fmt.Fprintf(&b, "(%d en cola)\n", v.Queued)
	}
	return b.String()
}

// RenderChat produces the chat panel frame, oldest line first.
func RenderChat(v ChatView) string {
	var b strings.Builder
	for _, m := range v.Messages {
		fmt.Fprintf(&b, "%s: %s\n", m.User, m.Text)
	}
	return b.String()
}

// RenderScore produces the scoreboard strip. Names render uppercase with the
// default labels as fallback; the timer renders as mm:ss.
func RenderScore(v ScoreView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d — %d %s\n",
		scoreName(v.Team1Name, "EQUIPO 1"), v.Team1Score,
		v.Team2Score, scoreName(v.Team2Name, "EQUIPO 2"))
	if v.Round != "" {
		fmt.Fprintf(&b, "%s\n", v.Round)
	}
	if v.Timer > 0 {
		fmt.Fprintf(&b, "%s\n", FormatTimer(v.Timer))
	}
	return b.String()
}

// FormatTimer renders whole seconds as mm:ss.
func FormatTimer(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func scoreName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return strings.ToUpper(name)
}
