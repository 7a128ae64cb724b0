package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/tablero-live/surfaces/pkg/wire"
)

// fakeConn is a channel-backed Conn: the test plays server by pushing frames
// into inbound and reading what the client wrote from written.
type fakeConn struct {
	inbound chan []byte
	written chan []byte

	once   sync.Once
	closed chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound: make(chan []byte, 16),
		written: make(chan []byte, 16),
		closed:  make(chan struct{}),
	}
}

func (f *fakeConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case data, ok := <-f.inbound:
		if !ok {
			return nil, io.EOF
		}
		return data, nil
	case <-f.closed:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeConn) Write(ctx context.Context, data []byte) error {
	select {
	case f.written <- data:
		return nil
	case <-f.closed:
		return errors.New("write on closed conn")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

// drop simulates an abnormal close from the server side.
func (f *fakeConn) drop() { _ = f.Close() }

// scriptDialer hands out one conn per dial and records every attempt.
type scriptDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
	errs  []error
	calls int
	dials chan struct{}
}

func newScriptDialer() *scriptDialer {
	return &scriptDialer{dials: make(chan struct{}, 32)}
}

func (d *scriptDialer) add(c *fakeConn)  { d.mu.Lock(); d.conns = append(d.conns, c); d.mu.Unlock() }
func (d *scriptDialer) addErr(err error) { d.mu.Lock(); d.errs = append(d.errs, err); d.mu.Unlock() }

func (d *scriptDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func (d *scriptDialer) dial(ctx context.Context, url string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	d.dials <- struct{}{}
	if len(d.errs) > 0 {
		err := d.errs[0]
		d.errs = d.errs[1:]
		return nil, err
	}
	if len(d.conns) == 0 {
		return nil, errors.New("no scripted conn")
	}
	c := d.conns[0]
	d.conns = d.conns[1:]
	return c, nil
}

func waitDial(t *testing.T, d *scriptDialer) {
	t.Helper()
	select {
	case <-d.dials:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for dial attempt")
	}
}

func recvFrame(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case data := <-ch:
		return data
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for written frame")
		return nil
	}
}

func TestClient_AnnouncesSubscriptionsOnOpen(t *testing.T) {
	conn := newFakeConn()
	dialer := newScriptDialer()
	dialer.add(conn)

	c := NewClient(Options{
		URL:          "ws://game.test",
		Channels:     []string{wire.ChannelAlerts, wire.ChannelChat},
		Rooms:        []string{wire.RoomDisplay},
		RequestState: true,
		Dial:         dialer.dial,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()

	want := []string{
		`{"type":"subscribe","channel":"alerts"}`,
		`{"type":"subscribe","channel":"chat"}`,
		`{"type":"join","room":"display"}`,
		`{"type":"get_game_state"}`,
	}
	for _, w := range want {
		require.JSONEq(t, w, string(recvFrame(t, conn.written)))
	}
}

func TestClient_DispatchesInOrderAndDropsBadFrames(t *testing.T) {
	conn := newFakeConn()
	dialer := newScriptDialer()
	dialer.add(conn)

	var mu sync.Mutex
	var got []string
	handler := func(m wire.Message) {
		mu.Lock()
		defer mu.Unlock()
		switch m.(type) {
		case wire.Alert:
			got = append(got, "alert")
		case wire.ClearAlerts:
			got = append(got, "clear_alerts")
		default:
			got = append(got, "other")
		}
	}

	c := NewClient(Options{URL: "ws://game.test", Dial: dialer.dial}, handler)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()
	waitDial(t, dialer)

	conn.inbound <- []byte(`{"type":"alert","title":"a"}`)
	conn.inbound <- []byte(`this is not json`)
	conn.inbound <- []byte(`{"type":"no_such_event"}`)
	conn.inbound <- []byte(`{"type":"clear_alerts"}`)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"alert", "clear_alerts"}, got)
}

func TestClient_ReconnectsAfterFixedDelay(t *testing.T) {
	first := newFakeConn()
	second := newFakeConn()
	dialer := newScriptDialer()
	dialer.add(first)
	dialer.add(second)

	fc := clockwork.NewFakeClock()
	c := NewClient(Options{
		URL:      "ws://game.test",
		Channels: []string{wire.ChannelAlerts},
		Dial:     dialer.dial,
		Clock:    fc,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()

	waitDial(t, dialer)
	recvFrame(t, first.written) // subscribe on first open

	first.drop()

	// The retry must wait out the full fixed delay before dialing again.
	fc.BlockUntil(1)
	require.Equal(t, 1, dialer.count())

	fc.Advance(DefaultRetryDelay)
	waitDial(t, dialer)

	// Subscriptions are re-sent unconditionally on the new connection.
	require.JSONEq(t, `{"type":"subscribe","channel":"alerts"}`, string(recvFrame(t, second.written)))
}

func TestClient_BoundedRetryGivesUp(t *testing.T) {
	dialer := newScriptDialer()
	for i := 0; i < 10; i++ {
		dialer.addErr(errors.New("connection refused"))
	}

	fc := clockwork.NewFakeClock()
	c := NewClient(Options{
		URL:         "ws://game.test",
		MaxAttempts: 2,
		Dial:        dialer.dial,
		Clock:       fc,
	}, nil)

	done := make(chan struct{})
	go func() {
		_ = c.Run(context.Background())
		close(done)
	}()

	// Initial attempt plus two scheduled retries, then nothing.
	waitDial(t, dialer)
	for i := 0; i < 2; i++ {
		fc.BlockUntil(1)
		fc.Advance(DefaultRetryDelay)
		waitDial(t, dialer)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("client should stop after exhausting retries")
	}
	require.Equal(t, 3, dialer.count())
	require.Equal(t, StateClosed, c.State())
}

func TestClient_SendIsFireAndForget(t *testing.T) {
	conn := newFakeConn()
	dialer := newScriptDialer()
	dialer.add(conn)

	c := NewClient(Options{URL: "ws://game.test", Dial: dialer.dial}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()
	waitDial(t, dialer)

	c.Send(wire.NewTeamAnswer("team1", "Cierto"))

	var msg wire.TeamAnswer
	require.NoError(t, json.Unmarshal(recvFrame(t, conn.written), &msg))
	require.Equal(t, "team1", msg.TeamID)
	require.Equal(t, "Cierto", msg.Answer)
}

func TestClient_SuccessfulOpenResetsAttemptCounter(t *testing.T) {
	dialer := newScriptDialer()
	dialer.addErr(errors.New("refused"))
	dialer.addErr(errors.New("refused"))
	c2 := newFakeConn()
	dialer.add(c2)

	fc := clockwork.NewFakeClock()
	c := NewClient(Options{
		URL:         "ws://game.test",
		MaxAttempts: 2,
		Dial:        dialer.dial,
		Clock:       fc,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()

	waitDial(t, dialer)
	for i := 0; i < 2; i++ {
		fc.BlockUntil(1)
		fc.Advance(DefaultRetryDelay)
		waitDial(t, dialer)
	}

	require.Eventually(t, func() bool { return c.Connected() }, 2*time.Second, 10*time.Millisecond)

	// After the successful open the budget is fresh: a drop schedules a
	// retry instead of giving up.
	c2.drop()
	fc.BlockUntil(1)
	fc.Advance(DefaultRetryDelay)
	waitDial(t, dialer)
	require.Equal(t, 4, dialer.count())
}
