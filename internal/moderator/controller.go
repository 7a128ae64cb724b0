// Package moderator is the operator console: it browses the question bank,
// pushes questions at a chosen target, reveals answers, adjusts scores and
// resets the game. Every action gets either a local precondition rejection or
// a server confirmation surfaced as a notice.
package moderator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tablero-live/surfaces/internal/game"
	"github.com/tablero-live/surfaces/pkg/wire"
)

// QuestionLoader fetches the question bank for one question type. The
// snapshot client satisfies this.
type QuestionLoader interface {
	Questions(ctx context.Context, questionType string) ([]wire.Question, error)
}

type Msg interface{ isMsg() }

// FromServer wraps a decoded realtime message.
type FromServer struct{ Msg wire.Message }

// LoadQuestions fetches the bank for one question type.
type LoadQuestions struct{ QuestionType string }

// SelectQuestion picks the Nth question of the loaded bank, 1-based.
type SelectQuestion struct{ Number int }

// SelectTarget picks which side the next question goes to.
type SelectTarget struct{ Target game.TargetTeam }

// SendQuestion pushes the selected question to the displays.
type SendQuestion struct{}

// ShowAnswer reveals the active question's answer on the displays.
type ShowAnswer struct{}

// UpdateScore adds points (possibly negative) to one team.
type UpdateScore struct {
	Team   game.TeamID
	Points int
}

// Reset starts a fresh game.
type Reset struct{}

type questionsLoaded struct {
	questionType string
	questions    []wire.Question
	err          error
}

type getView struct{ reply chan View }

func (FromServer) isMsg()      {}
func (LoadQuestions) isMsg()   {}
func (SelectQuestion) isMsg()  {}
func (SelectTarget) isMsg()    {}
func (SendQuestion) isMsg()    {}
func (ShowAnswer) isMsg()      {}
func (UpdateScore) isMsg()     {}
func (Reset) isMsg()           {}
func (questionsLoaded) isMsg() {}
func (getView) isMsg()         {}

// View is the console's renderable snapshot.
type View struct {
	QuestionType string
	Questions    []wire.Question
	Selected     *wire.Question
	Target       game.TargetTeam

	CurrentQuestion *wire.Question
	GameActive      bool
	ShowAnswer      bool

	Teams        game.Teams
	LastAnswered *wire.TeamAnswered

	Notice *game.Notice
}

type Controller struct {
	inbox  chan Msg
	frames chan string
	send   func(any)
	loader QuestionLoader
	view   View
	log    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, loader QuestionLoader, send func(any), log *zap.Logger) *Controller {
	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		inbox:  make(chan Msg, 64),
		frames: make(chan string, 8),
		send:   send,
		loader: loader,
		view:   View{Target: game.TargetBoth, Teams: game.Teams{}},
		log:    log.Named("moderator"),
		ctx:    ctx,
		cancel: cancel,
	}
	go c.loop()
	return c
}

func (c *Controller) Inbox() chan<- Msg     { return c.inbox }
func (c *Controller) Frames() <-chan string { return c.frames }
func (c *Controller) Close()                { c.cancel() }

// HandleMessage adapts the controller to realtime.Handler.
func (c *Controller) HandleMessage(m wire.Message) {
	select {
	case c.inbox <- FromServer{Msg: m}:
	case <-c.ctx.Done():
	}
}

func (c *Controller) View() View {
	reply := make(chan View, 1)
	select {
	case c.inbox <- getView{reply: reply}:
		return <-reply
	case <-c.ctx.Done():
		return View{}
	}
}

func (c *Controller) loop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case m := <-c.inbox:
			switch msg := m.(type) {
			case getView:
				msg.reply <- c.view
				continue
			case FromServer:
				c.handleServer(msg.Msg)
			case LoadQuestions:
				c.startLoad(msg.QuestionType)
			case questionsLoaded:
				c.finishLoad(msg)
			case SelectQuestion:
				c.handleSelectQuestion(msg.Number)
			case SelectTarget:
				c.view.Target = msg.Target
				c.view.Notice = nil
			case SendQuestion:
				c.handleSendQuestion()
			case ShowAnswer:
				c.handleShowAnswer()
			case UpdateScore:
				c.handleUpdateScore(msg)
			case Reset:
				c.send(wire.NewResetGame())
				c.view.Notice = game.SuccessNotice("Reinicio solicitado")
			}
			c.publish()
		}
	}
}

func (c *Controller) handleServer(m wire.Message) {
	switch msg := m.(type) {
	case wire.GameState:
		c.view.CurrentQuestion = msg.CurrentQuestion
		c.view.GameActive = msg.GameActive
		c.view.ShowAnswer = msg.ShowAnswer
		c.view.Teams = c.view.Teams.Replace(msg.Teams)
		if target, ok := game.ParseTargetTeam(msg.TargetTeam); ok {
			c.view.Target = target
		}

	case wire.TeamAnswered:
		answered := msg
		c.view.LastAnswered = &answered
		c.view.Teams = c.view.Teams.Replace(msg.Teams)
		verdict := "incorrecta"
		if msg.IsCorrect {
			verdict = "correcta"
		}
		c.view.Notice = game.SuccessNotice(
			fmt.Sprintf("%s respondió %q (%s)", msg.TeamName, msg.Answer, verdict))

	case wire.ScoreUpdated:
		c.view.Teams = c.view.Teams.Replace(msg.Teams)

	case wire.GameReset:
		c.view.CurrentQuestion = nil
		c.view.GameActive = msg.GameActive
		c.view.ShowAnswer = false
		c.view.LastAnswered = nil
		c.view.Teams = c.view.Teams.Replace(msg.Teams)

	case wire.Confirmation:
		c.handleConfirmation(msg)

	default:
		// Overlay channel traffic; not the console's concern.
	}
}

func (c *Controller) handleConfirmation(msg wire.Confirmation) {
	if !msg.OK() {
		c.view.Notice = game.ErrorNotice("Error: " + msg.Message)
		return
	}
	c.view.Teams = c.view.Teams.Replace(msg.Teams)

	switch msg.Type {
	case wire.TypeQuestionSent:
		c.view.CurrentQuestion = msg.Question
		c.view.GameActive = true
		c.view.ShowAnswer = false
		c.view.LastAnswered = nil
		if target, ok := game.ParseTargetTeam(msg.TargetTeam); ok {
			c.view.Target = target
		}
		c.view.Notice = game.SuccessNotice("Pregunta enviada")
	case wire.TypeAnswerShown:
		c.view.ShowAnswer = true
		c.view.Notice = game.SuccessNotice("Respuesta revelada")
	case wire.TypeScoreUpdateConfirmed:
		c.view.Notice = game.SuccessNotice("Puntaje actualizado")
	case wire.TypeResetConfirmed:
		c.view.CurrentQuestion = nil
		c.view.GameActive = false
		c.view.ShowAnswer = false
		c.view.Selected = nil
		c.view.LastAnswered = nil
		c.view.Notice = game.SuccessNotice("Juego reiniciado")
	}
}

// startLoad fetches the bank off the loop so a slow HTTP call never stalls
// inbound message handling; the result comes back as a message.
func (c *Controller) startLoad(questionType string) {
	if questionType != wire.QuestionTrueFalse && questionType != wire.QuestionMultipleChoice {
		c.view.Notice = game.ErrorNotice("Tipo de pregunta desconocido: " + questionType)
		return
	}
	c.view.Notice = nil
	go func() {
		qs, err := c.loader.Questions(c.ctx, questionType)
		select {
		case c.inbox <- questionsLoaded{questionType: questionType, questions: qs, err: err}:
		case <-c.ctx.Done():
		}
	}()
}

func (c *Controller) finishLoad(msg questionsLoaded) {
	if msg.err != nil {
		c.log.Warn("load questions", zap.String("question_type", msg.questionType), zap.Error(msg.err))
		c.view.Notice = game.ErrorNotice("No se pudieron cargar las preguntas")
		return
	}
	c.view.QuestionType = msg.questionType
	c.view.Questions = msg.questions
	c.view.Selected = nil
	c.view.Notice = game.SuccessNotice(
		fmt.Sprintf("%d preguntas cargadas", len(msg.questions)))
}

func (c *Controller) handleSelectQuestion(number int) {
	if number < 1 || number > len(c.view.Questions) {
		c.view.Notice = game.ErrorNotice(fmt.Sprintf("No existe la pregunta %d", number))
		return
	}
	q := c.view.Questions[number-1]
	c.view.Selected = &q
	c.view.Notice = nil
}

func (c *Controller) handleSendQuestion() {
	if c.view.Selected == nil {
		c.view.Notice = game.ErrorNotice("No hay pregunta seleccionada")
		return
	}
	c.send(wire.NewSendQuestion(c.view.Selected.ID, string(c.view.Target)))
	c.log.Info("question sent",
		zap.Int("question_id", c.view.Selected.ID),
		zap.String("target", string(c.view.Target)))
}

func (c *Controller) handleShowAnswer() {
	if c.view.CurrentQuestion == nil {
		c.view.Notice = game.ErrorNotice("No hay pregunta activa")
		return
	}
	if c.view.ShowAnswer {
		c.view.Notice = game.ErrorNotice("La respuesta ya fue revelada")
		return
	}
	c.send(wire.NewShowAnswer())
}

func (c *Controller) handleUpdateScore(msg UpdateScore) {
	if _, ok := game.ParseTeamID(string(msg.Team)); !ok {
		c.view.Notice = game.ErrorNotice("Equipo desconocido")
		return
	}
	if msg.Points == 0 {
		c.view.Notice = game.ErrorNotice("Los puntos no pueden ser cero")
		return
	}
	c.send(wire.NewUpdateScore(string(msg.Team), msg.Points))
}

func (c *Controller) publish() {
	select {
	case c.frames <- Render(c.view):
	default:
	}
}
