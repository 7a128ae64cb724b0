package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tablero-live/surfaces/internal/answers"
	"github.com/tablero-live/surfaces/internal/game"
	"github.com/tablero-live/surfaces/internal/moderator"
	"github.com/tablero-live/surfaces/pkg/wire"
)

// parseModeratorCommand maps one console line to a controller message.
//
//	cargar <cierto_falso|opcion_multiple>
//	elegir <n>
//	objetivo <team1|team2|both>
//	enviar
//	revelar
//	puntos <team1|team2> <n>
//	reiniciar
func parseModeratorCommand(line string) (moderator.Msg, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("comando vacío")
	}
	switch fields[0] {
	case "cargar":
		if len(fields) != 2 {
			return nil, fmt.Errorf("uso: cargar <%s|%s>", wire.QuestionTrueFalse, wire.QuestionMultipleChoice)
		}
		return moderator.LoadQuestions{QuestionType: fields[1]}, nil
	case "elegir":
		if len(fields) != 2 {
			return nil, fmt.Errorf("uso: elegir <n>")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("uso: elegir <n>")
		}
		return moderator.SelectQuestion{Number: n}, nil
	case "objetivo":
		if len(fields) != 2 {
			return nil, fmt.Errorf("uso: objetivo <team1|team2|both>")
		}
		target, ok := game.ParseTargetTeam(fields[1])
		if !ok {
			return nil, fmt.Errorf("objetivo desconocido: %s", fields[1])
		}
		return moderator.SelectTarget{Target: target}, nil
	case "enviar":
		return moderator.SendQuestion{}, nil
	case "revelar":
		return moderator.ShowAnswer{}, nil
	case "puntos":
		if len(fields) != 3 {
			return nil, fmt.Errorf("uso: puntos <team1|team2> <n>")
		}
		team, ok := game.ParseTeamID(fields[1])
		if !ok {
			return nil, fmt.Errorf("equipo desconocido: %s", fields[1])
		}
		points, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("uso: puntos <team1|team2> <n>")
		}
		return moderator.UpdateScore{Team: team, Points: points}, nil
	case "reiniciar":
		return moderator.Reset{}, nil
	default:
		return nil, fmt.Errorf("comando desconocido: %s", fields[0])
	}
}

// parseAnswerCommand maps one pad line to a controller message.
//
//	elegir <respuesta>
//	cancelar
//	enviar
func parseAnswerCommand(line string) (answers.Msg, error) {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("comando vacío")
	}
	switch fields[0] {
	case "elegir":
		answer := strings.TrimSpace(strings.TrimPrefix(line, "elegir"))
		if answer == "" {
			return nil, fmt.Errorf("uso: elegir <respuesta>")
		}
		return answers.Select{Answer: answer}, nil
	case "cancelar":
		return answers.Cancel{}, nil
	case "enviar":
		return answers.Submit{}, nil
	default:
		return nil, fmt.Errorf("comando desconocido: %s", fields[0])
	}
}
