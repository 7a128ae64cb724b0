package board

import (
	"fmt"
	"strings"

	"github.com/tablero-live/surfaces/internal/game"
)

// Render produces the display frame as a pure function of the view.
func Render(v View) string {
	var b strings.Builder

	t1 := v.Teams.Team(game.Team1)
	t2 := v.Teams.Team(game.Team2)
	fmt.Fprintf(&b, "  %s  %d — %d  %s\n\n",
		nameOr(t1.Name, "EQUIPO 1"), t1.Score, t2.Score, nameOr(t2.Name, "EQUIPO 2"))

	if v.Question == nil {
		b.WriteString("  Esperando la siguiente pregunta...\n")
		return b.String()
	}

	fmt.Fprintf(&b, "  %s\n", v.Question.Question)
	fmt.Fprintf(&b, "  Para: %s\n\n", targetLabel(v.Target))
	for i, opt := range v.Question.Options {
		marker := " "
		if v.ShowAnswer && opt == v.CorrectAnswer {
			marker = "★"
		}
		fmt.Fprintf(&b, "  %s %d) %s\n", marker, i+1, opt)
	}

	if v.ShowAnswer && v.CorrectAnswer != "" {
		fmt.Fprintf(&b, "\n  Respuesta correcta: %s\n", v.CorrectAnswer)
	}

	if v.LastAnswered != nil {
		verdict := "Incorrecto"
		points := ""
		if v.LastAnswered.IsCorrect {
			verdict = "¡Correcto!"
			points = fmt.Sprintf(" +%d pts", v.LastAnswered.Points)
		}
		fmt.Fprintf(&b, "\n  %s respondió %q · %s%s\n",
			v.LastAnswered.TeamName, v.LastAnswered.Answer, verdict, points)
	}
	return b.String()
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return strings.ToUpper(name)
}

func targetLabel(t game.TargetTeam) string {
	switch t {
	case game.TargetTeam1:
		return "Equipo 1"
	case game.TargetTeam2:
		return "Equipo 2"
	default:
		return "Ambos equipos"
	}
}
