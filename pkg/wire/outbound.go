package wire

// Outbound actions. Constructors fill in the discriminator so a caller can
// never emit a message with a missing type.

type Subscribe struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

func NewSubscribe(channel string) Subscribe {
	return Subscribe{Type: TypeSubscribe, Channel: channel}
}

type Join struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

func NewJoin(room string) Join {
	return Join{Type: TypeJoin, Room: room}
}

type GetGameState struct {
	Type string `json:"type"`
}

func NewGetGameState() GetGameState {
	return GetGameState{Type: TypeGetGameState}
}

type SendQuestion struct {
	Type       string `json:"type"`
	QuestionID int    `json:"question_id"`
	TargetTeam string `json:"target_team"`
}

func NewSendQuestion(questionID int, targetTeam string) SendQuestion {
	return SendQuestion{Type: TypeSendQuestion, QuestionID: questionID, TargetTeam: targetTeam}
}

type ShowAnswer struct {
	Type string `json:"type"`
}

func NewShowAnswer() ShowAnswer {
	return ShowAnswer{Type: TypeShowAnswer}
}

type UpdateScore struct {
	Type   string `json:"type"`
	TeamID string `json:"team_id"`
	Points int    `json:"points"`
}

func NewUpdateScore(teamID string, points int) UpdateScore {
	return UpdateScore{Type: TypeUpdateScore, TeamID: teamID, Points: points}
}

type ResetGame struct {
	Type string `json:"type"`
}

func NewResetGame() ResetGame {
	return ResetGame{Type: TypeResetGame}
}

type TeamAnswer struct {
	Type   string `json:"type"`
	TeamID string `json:"team_id"`
	Answer string `json:"answer"`
}

func NewTeamAnswer(teamID, answer string) TeamAnswer {
	return TeamAnswer{Type: TypeTeamAnswer, TeamID: teamID, Answer: answer}
}
