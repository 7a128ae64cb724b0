package scoreboard

import (
	"fmt"
	"strings"

	"github.com/tablero-live/surfaces/internal/game"
	"github.com/tablero-live/surfaces/pkg/wire"
)

// Render produces the panel frame as a pure function of the view.
func Render(v View) string {
	var b strings.Builder

	b.WriteString("== MARCADOR ==\n")
	writeTeam(&b, v.Teams.Team(game.Team1), "Equipo 1")
	writeTeam(&b, v.Teams.Team(game.Team2), "Equipo 2")

	fmt.Fprintf(&b, "\nPreguntas: %d · Aciertos: %d · Precisión: %d%%\n",
		v.Stats.TotalQuestions, v.Stats.TotalCorrect, v.Stats.AccuracyPct)

	if v.Milestone > 0 {
		fmt.Fprintf(&b, "\n¡¡ %d PUNTOS !!\n", v.Milestone)
	}

	if len(v.History) > 0 {
		b.WriteString("\nÚltimas respuestas:\n")
		for _, r := range v.History {
			verdict := "✗"
			if r.Correct {
				verdict = "✓"
			}
			fmt.Fprintf(&b, "  %s %s: %q", verdict, r.Team, r.Answer)
			if r.Points != 0 {
				fmt.Fprintf(&b, " (+%d)", r.Points)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeTeam(b *strings.Builder, info wire.TeamInfo, fallback string) {
	name := info.Name
	if name == "" {
		name = fallback
	}
	fmt.Fprintf(b, "%-12s %4d pts  (%d✓ %d✗)\n",
		name, info.Score, info.CorrectAnswers, info.WrongAnswers)
}
