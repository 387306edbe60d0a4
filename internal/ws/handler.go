// Package ws adapts websocket connections to the lobby: one reader loop and
// one writer goroutine per connection, JSON text frames both ways.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/draft-arena/internal/lobby"
	"github.com/DoyleJ11/draft-arena/internal/types"
)

const (
	outboxSize   = 32
	readLimit    = 64 << 10
	writeTimeout = 3 * time.Second
)

// Handler upgrades the request and feeds the connection's frames to lb. An
// optional ?draftId=&team= query joins a draft right after the upgrade.
func Handler(lb *lobby.Lobby, originPatterns []string, log *zap.Logger) http.HandlerFunc {
	log = log.Named("ws")
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.CloseNow()
		conn.SetReadLimit(readLimit)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		connID := uuid.NewString()
		clog := log.With(zap.String("conn_id", connID))

		out := make(chan types.ServerMessage, outboxSize)
		if err := lb.Send(ctx, lobby.Connect{ConnID: connID, Outbox: out}); err != nil {
			conn.Close(websocket.StatusTryAgainLater, "server shutting down")
			return
		}
		defer func() { _ = lb.Send(context.Background(), lobby.Disconnect{ConnID: connID}) }()

		// Writer goroutine. The lobby closes out when it lets go of this
		// connection, which ends the reader too.
		go func() {
			defer cancel()
			for msg := range out {
				wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
				err := wsjson.Write(wctx, conn, msg)
				wcancel()
				if err != nil {
					clog.Debug("write failed", zap.Error(err))
					return
				}
			}
		}()

		if draftID := r.URL.Query().Get("draftId"); draftID != "" {
			join := types.ClientMessage{Type: types.MsgJoinDraft, DraftID: draftID, Team: r.URL.Query().Get("team")}
			if err := lb.Send(ctx, lobby.Inbound{ConnID: connID, Msg: join}); err != nil {
				return
			}
		}

		// Reader loop
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					clog.Debug("client closed connection")
				default:
					if ctx.Err() == nil {
						clog.Debug("read failed", zap.Error(err))
					}
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = wsjson.Write(ctx, conn, types.ErrorMessage(lobby.CodeBadRequest, "Malformed message"))
				continue
			}
			if err := lb.Send(ctx, lobby.Inbound{ConnID: connID, Msg: cm}); err != nil {
				return
			}
		}
	}
}
