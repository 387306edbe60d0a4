package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DoyleJ11/draft-arena/internal/archive"
	"github.com/DoyleJ11/draft-arena/internal/lobby"
	"github.com/DoyleJ11/draft-arena/internal/registry"
	"github.com/DoyleJ11/draft-arena/internal/timer"
	"github.com/DoyleJ11/draft-arena/internal/types"
)

func newServer(t *testing.T) (*httptest.Server, *registry.Registry) {
	t.Helper()
	log := zaptest.NewLogger(t)
	ctx, cancel := context.WithCancel(context.Background())

	reg := registry.New(ctx, registry.Options{Expiry: time.Hour}, log)
	timers := timer.New(ctx, timer.DefaultConfig(), log)
	lb := lobby.New(ctx, reg, timers, archive.Nop{}, log)
	srv := httptest.NewServer(Handler(lb, []string{"*"}, log))

	t.Cleanup(func() {
		cancel()
		<-lb.Done()
		srv.Close()
		timers.Close()
		reg.Destroy()
	})
	return srv, reg
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	return conn
}

func read(t *testing.T, conn *websocket.Conn) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var msg types.ServerMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	return msg
}

func TestHandler_QueryJoinSendsSnapshot(t *testing.T) {
	srv, reg := newServer(t)

	conn := dial(t, srv, "?draftId=d1&team=BLUE")
	defer conn.CloseNow()

	msg := read(t, conn)
	require.Equal(t, types.MsgDraftStateUpdate, msg.Type)
	require.NotNil(t, msg.State)
	assert.Equal(t, "d1", msg.State.ID)
	assert.True(t, msg.State.BlueConnected)

	s, ok := reg.Get("d1")
	require.True(t, ok)
	assert.True(t, s.BlueConnected)
}

func TestHandler_MalformedFrameGetsBadRequest(t *testing.T) {
	srv, _ := newServer(t)

	conn := dial(t, srv, "")
	defer conn.CloseNow()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{not json")))

	msg := read(t, conn)
	require.Equal(t, types.MsgError, msg.Type)
	assert.Equal(t, lobby.CodeBadRequest, msg.Error.Code)
}

func TestHandler_ActionRoundTrip(t *testing.T) {
	srv, _ := newServer(t)

	conn := dial(t, srv, "")
	defer conn.CloseNow()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, types.ClientMessage{
		Type:         types.MsgCreateDraft,
		DraftID:      "d1",
		BlueTeamName: "Alpha",
		RedTeamName:  "Bravo",
	}))

	msg := read(t, conn)
	require.Equal(t, types.MsgDraftStateUpdate, msg.Type)
	assert.Equal(t, "Alpha", msg.State.BlueTeamName)
	assert.Equal(t, "Bravo", msg.State.RedTeamName)
}

func TestHandler_CloseMarksTeamDisconnected(t *testing.T) {
	srv, reg := newServer(t)

	conn := dial(t, srv, "?draftId=d1&team=RED")
	read(t, conn)
	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "bye"))

	require.Eventually(t, func() bool {
		s, ok := reg.Get("d1")
		return ok && !s.RedConnected
	}, time.Second, 10*time.Millisecond)
}
