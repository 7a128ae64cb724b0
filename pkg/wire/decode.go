package wire

import (
	"encoding/json"
	"fmt"
)

type envelope struct {
	Type string `json:"type"`
}

// Decode parses a raw frame into its concrete message type. A frame whose
// type is not part of the contract returns ErrUnknownType; a frame that fails
// validation returns ErrInvalidMessage. Callers drop both without touching
// their view state.
func Decode(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrInvalidMessage)
	}

	switch env.Type {
	case TypeAlert:
		return decodeInto[Alert](data, validateAlert)
	case TypeClearAlerts:
		return decodeInto[ClearAlerts](data, nil)
	case TypeNewMessage:
		return decodeInto[NewMessage](data, validateNewMessage)
	case TypeChatHistory:
		return decodeInto[ChatHistory](data, nil)
	case TypeScoreUpdate:
		return decodeInto[ScoreUpdate](data, validateScoreUpdate)
	case TypeTeamNames:
		return decodeInto[TeamNames](data, nil)
	case TypeRoundInfo:
		return decodeInto[RoundInfo](data, nil)
	case TypeTimerUpdate:
		return decodeInto[TimerUpdate](data, validateTimerUpdate)
	case TypeFullState:
		return decodeInto[FullState](data, nil)
	case TypeNewQuestion:
		return decodeInto[NewQuestion](data, validateNewQuestion)
	case TypeTeamAnswered:
		return decodeInto[TeamAnswered](data, validateTeamAnswered)
	case TypeScoreUpdated:
		return decodeInto[ScoreUpdated](data, nil)
	case TypeGameReset:
		return decodeInto[GameReset](data, nil)
	case TypeGameState:
		return decodeInto[GameState](data, nil)
	case TypeStatus:
		return decodeInto[Status](data, nil)
	case TypeQuestionSent, TypeAnswerShown, TypeScoreUpdateConfirmed, TypeResetConfirmed:
		return decodeInto[Confirmation](data, validateConfirmation)
	case TypeShowCorrectAnswer:
		return decodeInto[ShowCorrectAnswer](data, nil)
	case TypeAnswerResult:
		return decodeInto[AnswerResult](data, validateAnswerResult)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

func decodeInto[T Message](data []byte, validate func(T) error) (Message, error) {
	var m T
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if validate != nil {
		if err := validate(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func validateAlert(m Alert) error {
	if m.Duration < 0 {
		return fmt.Errorf("%w: negative alert duration %d", ErrInvalidMessage, m.Duration)
	}
	return nil
}

func validateNewMessage(m NewMessage) error {
	if m.Message.Text == "" && m.Message.User == "" {
		return fmt.Errorf("%w: empty chat message", ErrInvalidMessage)
	}
	return nil
}

func validateScoreUpdate(m ScoreUpdate) error {
	if m.Team != RefTeam1 && m.Team != RefTeam2 {
		return fmt.Errorf("%w: score_update without team", ErrInvalidMessage)
	}
	return nil
}

func validateTimerUpdate(m TimerUpdate) error {
	if m.Time < 0 {
		return fmt.Errorf("%w: negative timer %d", ErrInvalidMessage, m.Time)
	}
	return nil
}

func validateNewQuestion(m NewQuestion) error {
	if m.Question == nil {
		return fmt.Errorf("%w: new_question without question", ErrInvalidMessage)
	}
	if err := validateTargetTeam(m.TargetTeam); err != nil {
		return err
	}
	return nil
}

func validateTeamAnswered(m TeamAnswered) error {
	if m.TeamID != "team1" && m.TeamID != "team2" {
		return fmt.Errorf("%w: team_answered with team_id %q", ErrInvalidMessage, m.TeamID)
	}
	return nil
}

func validateConfirmation(m Confirmation) error {
	if m.Status != StatusSuccess && m.Status != StatusError {
		return fmt.Errorf("%w: confirmation status %q", ErrInvalidMessage, m.Status)
	}
	return nil
}

func validateAnswerResult(m AnswerResult) error {
	if m.Status != StatusSuccess && m.Status != StatusError {
		return fmt.Errorf("%w: answer_result status %q", ErrInvalidMessage, m.Status)
	}
	return nil
}

func validateTargetTeam(s string) error {
	switch s {
	case "team1", "team2", "both":
		return nil
	}
	return fmt.Errorf("%w: target_team %q", ErrInvalidMessage, s)
}
