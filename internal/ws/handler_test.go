package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/durak-client/internal/dispatch"
	"github.com/DoyleJ11/durak-client/internal/protocol"
	"github.com/DoyleJ11/durak-client/internal/types"
)

type nopSender struct{}

func (nopSender) Send(protocol.Outbound) {}

func dialStream(t *testing.T) (*dispatch.Loop, *websocket.Conn) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	loop := dispatch.NewLoop(ctx, dispatch.LoopConfig{Sender: nopSender{}})
	srv := httptest.NewServer(Handler(loop, nil))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return loop, conn
}

func readMsg(t *testing.T, conn *websocket.Conn) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg types.ServerMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func writeJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, conn.Write(context.Background(), websocket.MessageText, data))
}

func TestStream_SnapshotThenUpdates(t *testing.T) {
	loop, conn := dialStream(t)

	first := readMsg(t, conn)
	assert.Equal(t, "ViewSnapshot", first.Type)
	require.NotNil(t, first.View)
	assert.Equal(t, 0, first.View.Version)

	require.NoError(t, loop.Deliver(context.Background(), protocol.Inbound{
		Name: protocol.EvtSessionEstablished,
		Data: json.RawMessage(`{"yourId":1,"yourNickname":"ann","clients":[],"rooms":[]}`),
	}))

	next := readMsg(t, conn)
	assert.Equal(t, "ViewSnapshot", next.Type)
	assert.Equal(t, 1, next.Version)
	assert.Equal(t, "ann", next.View.Lobby.SelfNickname)
}

func TestStream_RefusedIntentReportsError(t *testing.T) {
	_, conn := dialStream(t)
	_ = readMsg(t, conn)

	writeJSON(t, conn, types.ClientMessage{Type: "Intent", Intent: dispatch.Intent{Verb: dispatch.VerbStartGame}})
	msg := readMsg(t, conn)
	assert.Equal(t, "Error", msg.Type)
	assert.NotEmpty(t, msg.Error)
}

func TestStream_BadMessage(t *testing.T) {
	_, conn := dialStream(t)
	_ = readMsg(t, conn)

	require.NoError(t, conn.Write(context.Background(), websocket.MessageText, []byte(`{nope`)))
	msg := readMsg(t, conn)
	assert.Equal(t, "Error", msg.Type)
	assert.Equal(t, "bad message", msg.Error)
}
