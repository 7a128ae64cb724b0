package overlay

import (
	"context"

	"go.uber.org/zap"

	"github.com/tablero-live/surfaces/pkg/wire"
)

// ChatLimit is how many lines the rolling panel keeps.
const ChatLimit = 10

type chatMsg interface{ isChatMsg() }

// ChatFromServer wraps a decoded realtime message for the chat widget.
type ChatFromServer struct{ Msg wire.Message }

type getChatView struct{ reply chan ChatView }

func (ChatFromServer) isChatMsg() {}
func (getChatView) isChatMsg()   {}

// ChatView is the widget's renderable snapshot, oldest line first.
type ChatView struct {
	Messages []wire.ChatMessage
}

// Chat is the rolling chat panel: chat_history replaces the buffer wholesale,
// new_message appends and evicts the oldest line past the cap.
type Chat struct {
	inbox    chan chatMsg
	frames   chan string
	messages []wire.ChatMessage
	log      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewChat(parent context.Context, log *zap.Logger) *Chat {
	ctx, cancel := context.WithCancel(parent)
	if log == nil {
		log = zap.NewNop()
	}
	c := &Chat{
		inbox:  make(chan chatMsg, 64),
		frames: make(chan string, 8),
		log:    log.Named("overlay.chat"),
		ctx:    ctx,
		cancel: cancel,
	}
	go c.loop()
	return c
}

func (c *Chat) Frames() <-chan string { return c.frames }
func (c *Chat) Close()                { c.cancel() }

// HandleMessage adapts the widget to realtime.Handler.
func (c *Chat) HandleMessage(m wire.Message) {
	select {
	case c.inbox <- ChatFromServer{Msg: m}:
	case <-c.ctx.Done():
	}
}

// Seed installs the HTTP snapshot as if the server had sent the history.
func (c *Chat) Seed(msgs []wire.ChatMessage) {
	c.HandleMessage(wire.ChatHistory{Type: wire.TypeChatHistory, Messages: msgs})
}

func (c *Chat) View() ChatView {
	reply := make(chan ChatView, 1)
	select {
	case c.inbox <- getChatView{reply: reply}:
		return <-reply
	case <-c.ctx.Done():
		return ChatView{}
	}
}

func (c *Chat) loop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case m := <-c.inbox:
			switch msg := m.(type) {
			case getChatView:
				msg.reply <- ChatView{Messages: c.copied()}
				continue
			case ChatFromServer:
				c.handleServer(msg.Msg)
			}
			c.publish()
		}
	}
}

func (c *Chat) handleServer(m wire.Message) {
	switch msg := m.(type) {
	case wire.ChatHistory:
		buf := msg.Messages
		if len(buf) > ChatLimit {
			buf = buf[len(buf)-ChatLimit:]
		}
		c.messages = append([]wire.ChatMessage(nil), buf...)
	case wire.NewMessage:
		c.messages = append(c.messages, msg.Message)
		if len(c.messages) > ChatLimit {
			c.messages = c.messages[len(c.messages)-ChatLimit:]
		}
	}
}

func (c *Chat) copied() []wire.ChatMessage {
	out := make([]wire.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Chat) publish() {
	select {
	case c.frames <- RenderChat(ChatView{Messages: c.copied()}):
	default:
	}
}
