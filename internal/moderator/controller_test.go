package moderator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tablero-live/surfaces/internal/game"
	"github.com/tablero-live/surfaces/pkg/wire"
)

type fakeLoader struct {
	questions map[string][]wire.Question
	err       error
}

func (f *fakeLoader) Questions(_ context.Context, questionType string) ([]wire.Question, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.questions[questionType], nil
}

var bank = []wire.Question{
	{ID: 1, Type: wire.QuestionTrueFalse, Question: "¿El agua hierve a 100°C?", Options: []string{"Cierto", "Falso"}, Category: "Ciencia", Difficulty: 1},
	{ID: 2, Type: wire.QuestionTrueFalse, Question: "¿La luna es un planeta?", Options: []string{"Cierto", "Falso"}, Category: "Ciencia", Difficulty: 2},
}

func newTestConsole(t *testing.T, loader QuestionLoader) (*Controller, chan any) {
	t.Helper()
	if loader == nil {
		loader = &fakeLoader{questions: map[string][]wire.Question{wire.QuestionTrueFalse: bank}}
	}
	sent := make(chan any, 16)
	c := New(context.Background(), loader, func(msg any) { sent <- msg }, nil)
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

func loadBank(t *testing.T, c *Controller) {
	t.Helper()
	c.Inbox() <- LoadQuestions{QuestionType: wire.QuestionTrueFalse}
	require.Eventually(t, func() bool {
		return len(c.View().Questions) == len(bank)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLoadSelectAndSendQuestion(t *testing.T) {
	c, sent := newTestConsole(t, nil)

	loadBank(t, c)
	c.Inbox() <- SelectQuestion{Number: 2}
	c.Inbox() <- SelectTarget{Target: game.TargetTeam2}
	c.Inbox() <- SendQuestion{}

	msg := recvSent(t, sent)
	sq, ok := msg.(wire.SendQuestion)
	require.True(t, ok, "expected send_question, got %#v", msg)
	require.Equal(t, 2, sq.QuestionID)
	require.Equal(t, "team2", sq.TargetTeam)
}

func TestSendWithoutSelectionIsRejected(t *testing.T) {
	c, sent := newTestConsole(t, nil)

	c.Inbox() <- SendQuestion{}
	v := c.View()
	require.Equal(t, "No hay pregunta seleccionada", v.Notice.Text)
	requireNothingSent(t, sent)
}

func TestLoadFailureRaisesNotice(t *testing.T) {
	c, _ := newTestConsole(t, &fakeLoader{err: errors.New("api down")})

	c.Inbox() <- LoadQuestions{QuestionType: wire.QuestionTrueFalse}
	require.Eventually(t, func() bool {
		v := c.View()
		return v.Notice != nil && v.Notice.Level == game.NoticeError
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUnknownQuestionTypeIsRejectedLocally(t *testing.T) {
	c, _ := newTestConsole(t, nil)

	c.Inbox() <- LoadQuestions{QuestionType: "trivia_extrema"}
	v := c.View()
	require.Equal(t, game.NoticeError, v.Notice.Level)
	require.Empty(t, v.Questions)
}

func TestShowAnswerRequiresActiveQuestion(t *testing.T) {
	c, sent := newTestConsole(t, nil)

	c.Inbox() <- ShowAnswer{}
	require.Equal(t, "No hay pregunta activa", c.View().Notice.Text)
	requireNothingSent(t, sent)

	c.HandleMessage(wire.Confirmation{
		Type:     wire.TypeQuestionSent,
		Status:   wire.StatusSuccess,
		Question: &bank[0],
	})
	c.Inbox() <- ShowAnswer{}
	require.IsType(t, wire.ShowAnswer{}, recvSent(t, sent))

	// Reveal is one-shot per question.
	c.HandleMessage(wire.Confirmation{Type: wire.TypeAnswerShown, Status: wire.StatusSuccess})
	c.Inbox() <- ShowAnswer{}
	require.Equal(t, "La respuesta ya fue revelada", c.View().Notice.Text)
	requireNothingSent(t, sent)
}

func TestUpdateScoreValidatesInput(t *testing.T) {
	c, sent := newTestConsole(t, nil)

	c.Inbox() <- UpdateScore{Team: "team3", Points: 10}
	require.Equal(t, "Equipo desconocido", c.View().Notice.Text)

	c.Inbox() <- UpdateScore{Team: game.Team1, Points: 0}
	require.Equal(t, "Los puntos no pueden ser cero", c.View().Notice.Text)
	requireNothingSent(t, sent)

	c.Inbox() <- UpdateScore{Team: game.Team1, Points: -5}
	msg := recvSent(t, sent)
	us, ok := msg.(wire.UpdateScore)
	require.True(t, ok)
	require.Equal(t, "team1", us.TeamID)
	require.Equal(t, -5, us.Points)
}

func TestConfirmationsUpdateConsole(t *testing.T) {
	c, _ := newTestConsole(t, nil)

	c.HandleMessage(wire.Confirmation{
		Type:       wire.TypeQuestionSent,
		Status:     wire.StatusSuccess,
		Question:   &bank[0],
		TargetTeam: "team1",
	})
	v := c.View()
	require.NotNil(t, v.CurrentQuestion)
	require.True(t, v.GameActive)
	require.Equal(t, game.TargetTeam1, v.Target)
	require.Equal(t, "Pregunta enviada", v.Notice.Text)

	c.HandleMessage(wire.Confirmation{
		Type:   wire.TypeScoreUpdateConfirmed,
		Status: wire.StatusSuccess,
		Teams:  map[string]wire.TeamInfo{"team1": {Name: "Azul", Score: 25}},
	})
	v = c.View()
	require.Equal(t, 25, v.Teams.Team(game.Team1).Score)

	c.HandleMessage(wire.Confirmation{Type: wire.TypeResetConfirmed, Status: wire.StatusSuccess})
	v = c.View()
	require.Nil(t, v.CurrentQuestion)
	require.False(t, v.GameActive)
	require.Equal(t, "Juego reiniciado", v.Notice.Text)
}

func TestErrorConfirmationRaisesNotice(t *testing.T) {
	c, _ := newTestConsole(t, nil)

	c.HandleMessage(wire.Confirmation{
		Type:    wire.TypeQuestionSent,
		Status:  wire.StatusError,
		Message: "Pregunta no encontrada",
	})
	v := c.View()
	require.Equal(t, game.NoticeError, v.Notice.Level)
	require.Contains(t, v.Notice.Text, "Pregunta no encontrada")
}

func TestTeamAnsweredShowsVerdict(t *testing.T) {
	c, _ := newTestConsole(t, nil)

	c.HandleMessage(wire.TeamAnswered{
		Type:      wire.TypeTeamAnswered,
		TeamID:    "team1",
		TeamName:  "Azul",
		Answer:    "Cierto",
		IsCorrect: true,
		Points:    10,
		Teams:     map[string]wire.TeamInfo{"team1": {Name: "Azul", Score: 10, CorrectAnswers: 1}},
	})

	v := c.View()
	require.NotNil(t, v.LastAnswered)
	require.Equal(t, 10, v.Teams.Team(game.Team1).Score)
	require.Contains(t, v.Notice.Text, "Azul")
	require.Contains(t, v.Notice.Text, "correcta")
}

func TestRenderMarksSelectedQuestion(t *testing.T) {
	c, _ := newTestConsole(t, nil)
	loadBank(t, c)
	c.Inbox() <- SelectQuestion{Number: 1}

	frame := Render(c.View())
	require.Contains(t, frame, "> 1)")
	require.Contains(t, frame, "¿El agua hierve a 100°C?")
}
