// Package wire defines the JSON messages exchanged with the game server.
// Every frame carries a "type" discriminator; Decode maps it to exactly one
// concrete message type and validates the payload at the boundary so handlers
// never see a half-formed message.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Channel names for overlay subscriptions.
const (
	ChannelAlerts     = "alerts"
	ChannelChat       = "chat"
	ChannelScoreboard = "scoreboard"
)

// Room names for the game surfaces.
const (
	RoomDisplay    = "display"
	RoomModerator  = "moderator"
	RoomScoreboard = "scoreboard"
)

// Server -> client message types.
const (
	TypeAlert                = "alert"
	TypeClearAlerts          = "clear_alerts"
	TypeNewMessage           = "new_message"
	TypeChatHistory          = "chat_history"
	TypeScoreUpdate          = "score_update"
	TypeTeamNames            = "team_names"
	TypeRoundInfo            = "round_info"
	TypeTimerUpdate          = "timer_update"
	TypeFullState            = "full_state"
	TypeNewQuestion          = "new_question"
	TypeTeamAnswered         = "team_answered"
	TypeScoreUpdated         = "score_updated"
	TypeGameReset            = "game_reset"
	TypeGameState            = "game_state"
	TypeStatus               = "status"
	TypeQuestionSent         = "question_sent"
	TypeAnswerShown          = "answer_shown"
	TypeScoreUpdateConfirmed = "score_update_confirmed"
	TypeResetConfirmed       = "reset_confirmed"
	TypeShowCorrectAnswer    = "show_correct_answer"
	TypeAnswerResult         = "answer_result"
)

// Client -> server message types.
const (
	TypeSubscribe    = "subscribe"
	TypeJoin         = "join"
	TypeGetGameState = "get_game_state"
	TypeSendQuestion = "send_question"
	TypeShowAnswer   = "show_answer"
	TypeUpdateScore  = "update_score"
	TypeResetGame    = "reset_game"
	TypeTeamAnswer   = "team_answer"
)

// Question types as stored by the server.
const (
	QuestionTrueFalse      = "cierto_falso"
	QuestionMultipleChoice = "opcion_multiple"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	ErrUnknownType    = errors.New("unknown message type")
	ErrInvalidMessage = errors.New("invalid message payload")
)

// Message is implemented by every decoded server message.
type Message interface{ isMessage() }

// Question is the server's question record. CorrectAnswer is only present
// once the server has revealed it.
type Question struct {
	ID            int      `json:"id"`
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Category      string   `json:"category"`
	Difficulty    int      `json:"difficulty"`
}

// TeamInfo is the per-team block embedded in game messages.
type TeamInfo struct {
	Name           string `json:"name"`
	Score          int    `json:"score"`
	Color          string `json:"color,omitempty"`
	CorrectAnswers int    `json:"correct_answers"`
	WrongAnswers   int    `json:"wrong_answers"`
}

// TeamRef identifies a team on the overlay scoreboard channel. The server is
// inconsistent about the encoding (1, 2, "team1", "team2" are all seen on the
// wire), so unmarshalling normalizes to "team1"/"team2".
type TeamRef string

const (
	RefTeam1 TeamRef = "team1"
	RefTeam2 TeamRef = "team2"
)

func (t *TeamRef) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		switch n {
		case 1:
			*t = RefTeam1
			return nil
		case 2:
			*t = RefTeam2
			return nil
		}
		return fmt.Errorf("%w: team %d", ErrInvalidMessage, n)
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: team must be a number or string", ErrInvalidMessage)
	}
	switch s {
	case "1", "team1":
		*t = RefTeam1
	case "2", "team2":
		*t = RefTeam2
	default:
		return fmt.Errorf("%w: team %q", ErrInvalidMessage, s)
	}
	return nil
}

// AlertStyle overrides the default alert colors.
type AlertStyle struct {
	BackgroundColor string `json:"backgroundColor,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	BorderColor     string `json:"borderColor,omitempty"`
}

// Alert is one display unit on the alerts channel. Duration is milliseconds;
// zero means the overlay default.
type Alert struct {
	Type     string      `json:"type"`
	Title    string      `json:"title"`
	Message  string      `json:"message"`
	Icon     string      `json:"icon,omitempty"`
	Duration int         `json:"duration,omitempty"`
	Sound    string      `json:"sound,omitempty"`
	Style    *AlertStyle `json:"style,omitempty"`
}

type ClearAlerts struct {
	Type string `json:"type"`
}

// ChatMessage is one line on the chat channel.
type ChatMessage struct {
	User      string `json:"user"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

type NewMessage struct {
	Type    string      `json:"type"`
	Message ChatMessage `json:"message"`
}

type ChatHistory struct {
	Type     string        `json:"type"`
	Messages []ChatMessage `json:"messages"`
}

type ScoreUpdate struct {
	Type  string  `json:"type"`
	Team  TeamRef `json:"team"`
	Score int     `json:"score"`
}

type TeamNames struct {
	Type  string `json:"type"`
	Team1 string `json:"team1,omitempty"`
	Team2 string `json:"team2,omitempty"`
}

type RoundInfo struct {
	Type  string `json:"type"`
	Round string `json:"round,omitempty"`
}

// TimerUpdate carries the round timer in whole seconds.
type TimerUpdate struct {
	Type string `json:"type"`
	Time int    `json:"time"`
}

// FullState is the overlay scoreboard snapshot; absent sections leave the
// current values untouched.
type FullState struct {
	Type   string `json:"type,omitempty"`
	Scores *struct {
		Team1 int `json:"team1"`
		Team2 int `json:"team2"`
	} `json:"scores,omitempty"`
	TeamNames *struct {
		Team1 string `json:"team1"`
		Team2 string `json:"team2"`
	} `json:"teamNames,omitempty"`
	Round string `json:"round,omitempty"`
	Timer int    `json:"timer,omitempty"`
}

type NewQuestion struct {
	Type       string    `json:"type"`
	Question   *Question `json:"question"`
	TargetTeam string    `json:"target_team"`
	GameActive bool      `json:"game_active"`
	ShowAnswer bool      `json:"show_answer"`
}

type TeamAnswered struct {
	Type       string              `json:"type"`
	TeamID     string              `json:"team_id"`
	TeamName   string              `json:"team_name"`
	Answer     string              `json:"answer"`
	IsCorrect  bool                `json:"is_correct"`
	Points     int                 `json:"points"`
	Teams      map[string]TeamInfo `json:"teams,omitempty"`
	TargetTeam string              `json:"target_team,omitempty"`
}

type ScoreUpdated struct {
	Type        string              `json:"type"`
	Teams       map[string]TeamInfo `json:"teams"`
	UpdatedTeam string              `json:"updated_team"`
	PointsAdded int                 `json:"points_added"`
}

type GameReset struct {
	Type            string              `json:"type"`
	Teams           map[string]TeamInfo `json:"teams,omitempty"`
	CurrentQuestion *Question           `json:"current_question,omitempty"`
	GameActive      bool                `json:"game_active"`
	ShowAnswer      bool                `json:"show_answer"`
}

type GameState struct {
	Type            string              `json:"type,omitempty"`
	CurrentQuestion *Question           `json:"current_question"`
	TargetTeam      string              `json:"target_team"`
	Teams           map[string]TeamInfo `json:"teams"`
	GameActive      bool                `json:"game_active"`
	ShowAnswer      bool                `json:"show_answer"`
}

type Status struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

// Confirmation is the server's reply to a moderator action: question_sent,
// answer_shown, score_update_confirmed or reset_confirmed. Which echoed
// fields are set depends on the action.
type Confirmation struct {
	Type       string              `json:"type"`
	Status     string              `json:"status"`
	Message    string              `json:"message,omitempty"`
	Question   *Question           `json:"question,omitempty"`
	TargetTeam string              `json:"target_team,omitempty"`
	Teams      map[string]TeamInfo `json:"teams,omitempty"`
}

func (c Confirmation) OK() bool { return c.Status == StatusSuccess }

type ShowCorrectAnswer struct {
	Type          string `json:"type"`
	CorrectAnswer string `json:"correct_answer"`
}

type AnswerResult struct {
	Type          string `json:"type"`
	Status        string `json:"status"`
	IsCorrect     bool   `json:"is_correct"`
	Points        int    `json:"points"`
	Answer        string `json:"answer,omitempty"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Message       string `json:"message,omitempty"`
}

func (r AnswerResult) OK() bool { return r.Status == StatusSuccess }

func (Alert) isMessage()             {}
func (ClearAlerts) isMessage()       {}
func (NewMessage) isMessage()        {}
func (ChatHistory) isMessage()       {}
func (ScoreUpdate) isMessage()       {}
func (TeamNames) isMessage()         {}
func (RoundInfo) isMessage()         {}
func (TimerUpdate) isMessage()       {}
func (FullState) isMessage()         {}
func (NewQuestion) isMessage()       {}
func (TeamAnswered) isMessage()      {}
func (ScoreUpdated) isMessage()      {}
func (GameReset) isMessage()         {}
func (GameState) isMessage()         {}
func (Status) isMessage()            {}
func (Confirmation) isMessage()      {}
func (ShowCorrectAnswer) isMessage() {}
func (AnswerResult) isMessage()      {}
