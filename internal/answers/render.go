package answers

import (
	"fmt"
	"strings"

	"github.com/tablero-live/surfaces/internal/game"
)

// Render produces the pad's text frame. It is a pure function of the view so
// repeated calls with the same state yield identical output.
func Render(v View) string {
	var b strings.Builder

	fmt.Fprintf(&b, "== PANEL DE RESPUESTAS · %s ==\n", teamLabel(v.TeamID))
	fmt.Fprintf(&b, "Marcador: %d pts (%d aciertos, %d fallos)\n", v.Score, v.CorrectCount, v.WrongCount)
	b.WriteString("\n")

	switch {
	case v.Question == nil:
		b.WriteString("Esperando pregunta...\n")
	default:
		fmt.Fprintf(&b, "Pregunta: %s\n", v.Question.Question)
		if v.Question.Category != "" {
			fmt.Fprintf(&b, "Categoría: %s · Dificultad %d/5\n", v.Question.Category, v.Question.Difficulty)
		}
		fmt.Fprintf(&b, "Dirigida a: %s\n", targetLabel(v.TargetTeam))
		for i, opt := range v.Question.Options {
			marker := " "
			if opt == v.Selected {
				marker = ">"
			}
			fmt.Fprintf(&b, " %s %d) %s\n", marker, i+1, opt)
		}
	}

	switch {
	case v.ShowAnswer && v.CorrectAnswer != "":
		fmt.Fprintf(&b, "\nRespuesta correcta: %s\n", v.CorrectAnswer)
	case v.HasAnswered:
		b.WriteString("\nRespuesta enviada. Esperando resultado...\n")
	case v.Selected != "":
		fmt.Fprintf(&b, "\nSeleccionada: %s (confirma para enviar)\n", v.Selected)
	case !v.CanAnswer && v.Question != nil:
		b.WriteString("\nNo es tu turno.\n")
	}

	if v.Result != nil {
		if v.Result.IsCorrect {
			fmt.Fprintf(&b, "¡Correcto! +%d puntos\n", v.Result.Points)
		} else {
			b.WriteString("Incorrecto.\n")
		}
	}

	if v.Notice != nil {
		fmt.Fprintf(&b, "\n[%s] %s\n", strings.ToUpper(string(v.Notice.Level)), v.Notice.Text)
	}
	return b.String()
}

func teamLabel(id game.TeamID) string {
	switch id {
	case game.Team1:
		return "Equipo 1"
	case game.Team2:
		return "Equipo 2"
	default:
		return string(id)
	}
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
