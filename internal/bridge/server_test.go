package bridge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wagerbot/internal/auth"
	"github.com/lox/wagerbot/internal/command"
	"github.com/lox/wagerbot/internal/game"
	"github.com/lox/wagerbot/internal/ledger"
	"github.com/lox/wagerbot/internal/metrics"
	"github.com/lox/wagerbot/internal/present"
	"github.com/lox/wagerbot/internal/randutil"
	"github.com/lox/wagerbot/internal/wager"
)

type testBridge struct {
	server *Server
	http   *httptest.Server
	clock  *quartz.Mock
}

func newTestBridge(t *testing.T) *testBridge {
	t.Helper()

	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	clock := quartz.NewMock(t)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	l := ledger.New(ledger.NewMemoryStore(), logger)
	presenters := present.NewMulti()
	coord := wager.New(l, wager.DefaultGames().Factories(), logger,
		wager.WithClock(clock),
		wager.WithSeeder(randutil.NewSeeder(9)),
		wager.WithPresenter(presenters),
		wager.WithMetrics(m),
	)
	d := command.New(coord, l, clock, logger, command.DefaultConfig())

	s := NewServer(Options{Handler: d, Metrics: m, Gatherer: reg, Clock: clock, Logger: logger})
	presenters.Add(s)

	hs := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Stop()
		hs.Close()
		coord.Close()
		l.Close()
	})
	return &testBridge{server: s, http: hs, clock: clock}
}

func (b *testBridge) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(b.http.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func send(t *testing.T, ws *websocket.Conn, requestID string, data CommandData) {
	t.Helper()
	msg, err := NewMessage(TypeCommand, data, time.Now())
	require.NoError(t, err)
	msg.RequestID = requestID
	require.NoError(t, ws.WriteJSON(msg))
}

func read(t *testing.T, ws *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, ws.ReadJSON(&msg))
	return msg
}

func TestHealth(t *testing.T) {
	t.Parallel()

	b := newTestBridge(t)
	resp, err := http.Get(b.http.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "OK", string(body))
}

func TestBalanceCommand(t *testing.T) {
	t.Parallel()

	b := newTestBridge(t)
	ws := b.dial(t)

	send(t, ws, "r1", CommandData{User: "alice", Channel: "general", Text: "!balance"})
	msg := read(t, ws)
	require.Equal(t, TypeReply, msg.Type)
	assert.Equal(t, "r1", msg.RequestID)

	var reply ReplyData
	require.NoError(t, json.Unmarshal(msg.Data, &reply))
	assert.Equal(t, "alice", reply.User)
	assert.Equal(t, "general", reply.Channel)
	assert.Equal(t, "💰 alice, you have **1000 coins**!", reply.Text)
}

func TestInvalidMessages(t *testing.T) {
	t.Parallel()

	b := newTestBridge(t)
	ws := b.dial(t)

	require.NoError(t, ws.WriteJSON(Message{Type: "dance", Data: json.RawMessage(`{}`)}))
	msg := read(t, ws)
	require.Equal(t, TypeError, msg.Type)
	var e ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &e))
	assert.Equal(t, "unknown_message_type", e.Code)

	send(t, ws, "", CommandData{User: "alice"})
	msg = read(t, ws)
	require.Equal(t, TypeError, msg.Type)
	require.NoError(t, json.Unmarshal(msg.Data, &e))
	assert.Equal(t, "invalid_command", e.Code)
}

func TestSessionUpdatesReachClient(t *testing.T) {
	t.Parallel()

	b := newTestBridge(t)
	ws := b.dial(t)
	send(t, ws, "r0", CommandData{User: "bob", Text: "balance"})
	read(t, ws)

	send(t, ws, "r1", CommandData{User: "bob", Channel: "casino", Text: "slots 10"})

	var (
		reply   ReplyData
		updates []UpdateData
	)
	for len(updates) == 0 || !updates[len(updates)-1].Final {
		msg := read(t, ws)
		switch msg.Type {
		case TypeReply:
			require.NoError(t, json.Unmarshal(msg.Data, &reply))
		case TypeUpdate:
			var u UpdateData
			require.NoError(t, json.Unmarshal(msg.Data, &u))
			updates = append(updates, u)
			if !u.Final {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				_, w := b.clock.AdvanceNext()
				w.MustWait(ctx)
				cancel()
			}
		default:
			t.Fatalf("unexpected message %s", msg.Type)
		}
	}

	require.NotEmpty(t, reply.Session)
	last := updates[len(updates)-1]
	assert.Equal(t, reply.Session, last.SessionID)
	assert.Equal(t, "bob", last.User)
	assert.Equal(t, game.Slots, last.Snapshot.Kind)
	assert.True(t, last.Snapshot.Status.Terminal())
	assert.Contains(t, last.Text, "🎰")
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	b := newTestBridge(t)
	ws := b.dial(t)
	send(t, ws, "r1", CommandData{User: "carol", Text: "balance"})
	read(t, ws)

	require.Eventually(t, func() bool {
		resp, err := http.Get(b.http.URL + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return strings.Contains(string(body), "wagerbot_bridge_clients 1")
	}, 5*time.Second, 10*time.Millisecond)
}

func TestAdapterTokens(t *testing.T) {
	t.Parallel()

	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	h := handlerFunc(func(_ context.Context, user, text string) command.Reply {
		return command.Reply{Text: user + ":" + text}
	})
	s := NewServer(Options{Handler: h, Logger: logger, Validator: auth.NewStaticValidator("s3cret", "discord")})
	hs := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Stop()
		hs.Close()
	})
	url := "ws" + strings.TrimPrefix(hs.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	ws, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": {"Bearer s3cret"}})
	require.NoError(t, err)
	defer ws.Close()
	send(t, ws, "r1", CommandData{User: "dave", Text: "ping"})
	msg := read(t, ws)
	var reply ReplyData
	require.NoError(t, json.Unmarshal(msg.Data, &reply))
	assert.Equal(t, "dave:ping", reply.Text)

	ws2, _, err := websocket.DefaultDialer.Dial(url+"?token=s3cret", nil)
	require.NoError(t, err)
	ws2.Close()
}

type handlerFunc func(ctx context.Context, user, text string) command.Reply

func (f handlerFunc) Handle(ctx context.Context, user, text string) command.Reply {
	return f(ctx, user, text)
}
