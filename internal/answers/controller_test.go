package answers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tablero-live/surfaces/internal/game"
	"github.com/tablero-live/surfaces/pkg/wire"
)

func newTestPad(t *testing.T, team game.TeamID) (*Controller, chan any) {
	t.Helper()
	sent := make(chan any, 16)
	c := New(context.Background(), team, func(msg any) { sent <- msg }, nil)
	t.Cleanup(c.Close)
	return c, sent
}

func recvSent(t *testing.T, sent chan any) any {
	t.Helper()
	select {
	case msg := <-sent:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for outbound action")
		return nil
	}
}

func requireNothingSent(t *testing.T, sent chan any) {
	t.Helper()
	select {
	case msg := <-sent:
		t.Fatalf("unexpected outbound action %#v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func questionFor(target string) wire.NewQuestion {
	return wire.NewQuestion{
		Type: wire.TypeNewQuestion,
		Question: &wire.Question{
			ID:       1,
			Type:     wire.QuestionTrueFalse,
			Question: "¿El sol es una estrella?",
			Options:  []string{"Cierto", "Falso"},
			Category: "Ciencia",
		},
		TargetTeam: target,
		GameActive: true,
	}
}

func TestSubmitEmitsTeamAnswerOnce(t *testing.T) {
	c, sent := newTestPad(t, game.Team1)

	c.HandleMessage(questionFor("both"))
	c.Inbox() <- Select{Answer: "Cierto"}
	c.Inbox() <- Submit{}

	msg := recvSent(t, sent)
	ta, ok := msg.(wire.TeamAnswer)
	require.True(t, ok, "expected team_answer, got %#v", msg)
	require.Equal(t, "team1", ta.TeamID)
	require.Equal(t, "Cierto", ta.Answer)

	v := c.View()
	require.True(t, v.HasAnswered)
	require.False(t, v.CanAnswer)

	// A second confirm on the same question stays local.
	c.Inbox() <- Submit{}
	v = c.View()
	require.Equal(t, game.NoticeError, v.Notice.Level)
	requireNothingSent(t, sent)
}

func TestIneligibleTeamCannotAnswer(t *testing.T) {
	c, sent := newTestPad(t, game.Team1)

	c.HandleMessage(questionFor("team2"))
	v := c.View()
	require.False(t, v.CanAnswer)

	c.Inbox() <- Select{Answer: "Falso"}
	v = c.View()
	require.Empty(t, v.Selected)
	require.Equal(t, "No puedes responder en este momento", v.Notice.Text)

	c.Inbox() <- Submit{}
	requireNothingSent(t, sent)
}

func TestSelectRequiresActiveQuestion(t *testing.T) {
	c, _ := newTestPad(t, game.Team2)

	c.Inbox() <- Select{Answer: "Cierto"}
	v := c.View()
	require.Empty(t, v.Selected)
	require.Equal(t, "No hay pregunta activa", v.Notice.Text)
}

func TestSelectRejectsUnknownOption(t *testing.T) {
	c, _ := newTestPad(t, game.Team1)

	c.HandleMessage(questionFor("both"))
	c.Inbox() <- Select{Answer: "Quizás"}
	v := c.View()
	require.Empty(t, v.Selected)
	require.Equal(t, game.NoticeError, v.Notice.Level)
}

func TestSubmitWithoutSelectionIsRejected(t *testing.T) {
	c, sent := newTestPad(t, game.Team1)

	c.HandleMessage(questionFor("both"))
	c.Inbox() <- Submit{}
	v := c.View()
	require.Equal(t, "No hay respuesta seleccionada", v.Notice.Text)
	requireNothingSent(t, sent)
}

func TestCancelUnstagesSelection(t *testing.T) {
	c, _ := newTestPad(t, game.Team1)

	c.HandleMessage(questionFor("both"))
	c.Inbox() <- Select{Answer: "Falso"}
	require.Equal(t, "Falso", c.View().Selected)

	c.Inbox() <- Cancel{}
	require.Empty(t, c.View().Selected)
}

func TestAnswerResultErrorReenablesPad(t *testing.T) {
	c, sent := newTestPad(t, game.Team1)

	c.HandleMessage(questionFor("both"))
	c.Inbox() <- Select{Answer: "Cierto"}
	c.Inbox() <- Submit{}
	recvSent(t, sent)

	c.HandleMessage(wire.AnswerResult{
		Type:    wire.TypeAnswerResult,
		Status:  wire.StatusError,
		Message: "Este equipo ya respondió",
	})

	v := c.View()
	require.False(t, v.HasAnswered)
	require.True(t, v.CanAnswer)
	require.Equal(t, game.NoticeError, v.Notice.Level)

	// The pad may try again after the server rejection.
	c.Inbox() <- Submit{}
	msg := recvSent(t, sent)
	require.IsType(t, wire.TeamAnswer{}, msg)
}

func TestAnswerResultSuccessRequestsFreshState(t *testing.T) {
	c, sent := newTestPad(t, game.Team1)

	c.HandleMessage(questionFor("both"))
	c.Inbox() <- Select{Answer: "Cierto"}
	c.Inbox() <- Submit{}
	recvSent(t, sent)

	c.HandleMessage(wire.AnswerResult{
		Type:      wire.TypeAnswerResult,
		Status:    wire.StatusSuccess,
		IsCorrect: true,
		Points:    10,
	})

	msg := recvSent(t, sent)
	require.IsType(t, wire.GetGameState{}, msg)

	v := c.View()
	require.NotNil(t, v.Result)
	require.True(t, v.Result.IsCorrect)
	require.True(t, v.HasAnswered)
}

func TestGameResetClearsPad(t *testing.T) {
	c, sent := newTestPad(t, game.Team1)

	c.HandleMessage(questionFor("both"))
	c.Inbox() <- Select{Answer: "Cierto"}
	c.Inbox() <- Submit{}
	recvSent(t, sent)

	c.HandleMessage(wire.GameReset{
		Type: wire.TypeGameReset,
		Teams: map[string]wire.TeamInfo{
			"team1": {Name: "Azul", Score: 0},
			"team2": {Name: "Rojo", Score: 0},
		},
	})

	v := c.View()
	require.Nil(t, v.Question)
	require.False(t, v.HasAnswered)
	require.Zero(t, v.Score)
	require.Equal(t, game.NoticeSuccess, v.Notice.Level)
}

func TestGameStateRestoresQuestionAndScores(t *testing.T) {
	c, _ := newTestPad(t, game.Team2)

	c.HandleMessage(wire.GameState{
		Type: wire.TypeGameState,
		CurrentQuestion: &wire.Question{
			ID: 7, Question: "¿2+2=4?", Options: []string{"Cierto", "Falso"},
		},
		TargetTeam: "team2",
		GameActive: true,
		Teams: map[string]wire.TeamInfo{
			"team2": {Name: "Rojo", Score: 30, CorrectAnswers: 3, WrongAnswers: 1},
		},
	})

	v := c.View()
	require.NotNil(t, v.Question)
	require.True(t, v.CanAnswer)
	require.Equal(t, 30, v.Score)
	require.Equal(t, 3, v.CorrectCount)
	require.Equal(t, 1, v.WrongCount)
}

func TestRenderIsDeterministic(t *testing.T) {
	c, _ := newTestPad(t, game.Team1)
	c.HandleMessage(questionFor("both"))
	c.Inbox() <- Select{Answer: "Cierto"}

	v := c.View()
	require.Equal(t, Render(v), Render(v))
	require.Contains(t, Render(v), "¿El sol es una estrella?")
	require.Contains(t, Render(v), "> 1) Cierto")
}
