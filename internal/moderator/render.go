package moderator

import (
	"fmt"
	"strings"

	"github.com/tablero-live/surfaces/internal/game"
)

// Render produces the console's text frame as a pure function of the view.
func Render(v View) string {
	var b strings.Builder

	b.WriteString("== CONSOLA DEL MODERADOR ==\n")
	t1 := v.Teams.Team(game.Team1)
	t2 := v.Teams.Team(game.Team2)
	fmt.Fprintf(&b, "%s: %d pts   %s: %d pts\n",
		nameOr(t1.Name, "Equipo 1"), t1.Score,
		nameOr(t2.Name, "Equipo 2"), t2.Score)

	if v.CurrentQuestion != nil {
		fmt.Fprintf(&b, "\nEn juego: %s\n", v.CurrentQuestion.Question)
		fmt.Fprintf(&b, "Dirigida a: %s\n", targetLabel(v.Target))
		if v.ShowAnswer {
			fmt.Fprintf(&b, "Respuesta revelada: %s\n", v.CurrentQuestion.CorrectAnswer)
		}
	} else {
		b.WriteString("\nSin pregunta en juego.\n")
	}

	if v.LastAnswered != nil {
		verdict := "✗"
		if v.LastAnswered.IsCorrect {
			verdict = "✓"
		}
		fmt.Fprintf(&b, "Última respuesta: %s %q %s\n",
			v.LastAnswered.TeamName, v.LastAnswered.Answer, verdict)
	}

	if len(v.Questions) > 0 {
		fmt.Fprintf(&b, "\nBanco (%s):\n", v.QuestionType)
		for i, q := range v.Questions {
			marker := " "
			if v.Selected != nil && v.Selected.ID == q.ID {
				marker = ">"
			}
			fmt.Fprintf(&b, " %s %d) [%s · %d/5] %s\n", marker, i+1, q.Category, q.Difficulty, q.Question)
		}
	}

	if v.Notice != nil {
		fmt.Fprintf(&b, "\n[%s] %s\n", strings.ToUpper(string(v.Notice.Level)), v.Notice.Text)
	}
	return b.String()
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
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
