// Package lobby routes client actions and timer events to draft sessions and
// broadcasts the results. All routing runs on one goroutine, so each action
// or timer event is handled to completion before the next one starts.
package lobby

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/DoyleJ11/draft-arena/internal/archive"
	"github.com/DoyleJ11/draft-arena/internal/engine"
	"github.com/DoyleJ11/draft-arena/internal/registry"
	"github.com/DoyleJ11/draft-arena/internal/timer"
	"github.com/DoyleJ11/draft-arena/internal/types"
)

type Msg interface{ isLobbyMsg() }

// Connect registers a connection. The lobby owns Outbox from here on and
// closes it on disconnect, when the client is too slow, or at shutdown.
type Connect struct {
	ConnID string
	Outbox chan types.ServerMessage
}

func (Connect) isLobbyMsg() {}

type Disconnect struct{ ConnID string }

func (Disconnect) isLobbyMsg() {}

type Inbound struct {
	ConnID string
	Msg    types.ClientMessage
}

func (Inbound) isLobbyMsg() {}

type GetStats struct {
	Reply chan Stats
}

func (GetStats) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type Stats struct {
	ConnectedClients int          `json:"connectedClients"`
	Sessions         int          `json:"sessions"`
	Rooms            int          `json:"rooms"`
	Timers           timer.Counts `json:"timers"`
}

var ErrStopped = errors.New("lobby stopped")

type client struct {
	outbox  chan types.ServerMessage
	draftID string
	team    engine.Team
}

type Lobby struct {
	inbox  chan Msg
	reg    *registry.Registry
	timers *timer.Coordinator
	rec    archive.Recorder
	log    *zap.Logger

	clients  map[string]*client
	rooms    map[string]map[string]struct{}
	versions map[string]int
	// stale holds sessions whose presence changed mid-broadcast.
	stale map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func New(parent context.Context, reg *registry.Registry, timers *timer.Coordinator, rec archive.Recorder, log *zap.Logger) *Lobby {
	if rec == nil {
		rec = archive.Nop{}
	}
	ctx, cancel := context.WithCancel(parent)

	l := &Lobby{
		inbox:    make(chan Msg, 64),
		reg:      reg,
		timers:   timers,
		rec:      rec,
		log:      log.Named("lobby"),
		clients:  make(map[string]*client),
		rooms:    make(map[string]map[string]struct{}),
		versions: make(map[string]int),
		stale:    make(map[string]struct{}),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case ev := <-l.timers.Events():
			l.handleTimer(ev)

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Connect:
				l.clients[msg.ConnID] = &client{outbox: msg.Outbox}
				l.log.Debug("client connected", zap.String("conn_id", msg.ConnID))

			case Disconnect:
				l.handleDisconnect(msg.ConnID)

			case Inbound:
				l.handleInbound(msg.ConnID, msg.Msg)

			case GetStats:
				msg.Reply <- Stats{
					ConnectedClients: len(l.clients),
					Sessions:         l.reg.Count(),
					Rooms:            len(l.rooms),
					Timers:           l.timers.ActiveTimerCount(),
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
		l.flushStale()
	}
}

// flushStale rebroadcasts sessions that lost a slow client during a broadcast.
func (l *Lobby) flushStale() {
	for len(l.stale) > 0 {
		for id := range l.stale {
			delete(l.stale, id)
			l.broadcastState(id)
		}
	}
}

func (l *Lobby) shutdown() {
	for id, c := range l.clients {
		close(c.outbox)
		delete(l.clients, id)
	}
	clear(l.rooms)
	l.cancel()
}

// Inbox exposes the lobby's mailbox to the transport and to tests.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Done is closed once the loop has exited.
func (l *Lobby) Done() <-chan struct{} { return l.done }

// Send delivers m unless ctx ends or the lobby has stopped first.
func (l *Lobby) Send(ctx context.Context, m Msg) error {
	select {
	case l.inbox <- m:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Lobby) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	if err := l.Send(ctx, GetStats{Reply: reply}); err != nil {
		return Stats{}, err
	}
	select {
	case st := <-reply:
		return st, nil
	case <-l.done:
		return Stats{}, ErrStopped
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

func (l *Lobby) handleDisconnect(connID string) {
	c, ok := l.clients[connID]
	if !ok {
		// already dropped as a slow client
		return
	}
	close(c.outbox)
	delete(l.clients, connID)
	l.leaveRoom(connID, c)
	l.log.Debug("client disconnected", zap.String("conn_id", connID), zap.String("draft_id", c.draftID))

	if c.team.Playing() && l.syncPresence(c.draftID, c.team) {
		l.broadcastState(c.draftID)
	}
}

// bind moves connID into draftID's room as team. The side it held before,
// in this session or another, is released.
func (l *Lobby) bind(connID string, c *client, draftID string, team engine.Team) {
	prev, prevTeam := c.draftID, c.team
	if prev != "" && prev != draftID {
		l.leaveRoom(connID, c)
	}

	room, ok := l.rooms[draftID]
	if !ok {
		room = make(map[string]struct{})
		l.rooms[draftID] = room
	}
	room[connID] = struct{}{}
	c.draftID = draftID
	c.team = team

	if prevTeam.Playing() && (prev != draftID || prevTeam != team) {
		if l.syncPresence(prev, prevTeam) && prev != draftID {
			l.broadcastState(prev)
		}
	}
	l.syncPresence(draftID, team)
}

// syncPresence sets team's connection flag to whether any connection in the
// room is still bound to that side.
func (l *Lobby) syncPresence(draftID string, team engine.Team) bool {
	if draftID == "" || !team.Playing() {
		return false
	}
	bound := false
	for connID := range l.rooms[draftID] {
		if c, ok := l.clients[connID]; ok && c.team == team {
			bound = true
			break
		}
	}
	return l.reg.UpdateConnectionStatus(draftID, team, bound)
}

func (l *Lobby) leaveRoom(connID string, c *client) {
	room, ok := l.rooms[c.draftID]
	if !ok {
		return
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(l.rooms, c.draftID)
		delete(l.versions, c.draftID)
	}
}

// send is fire-and-forget. A client whose outbox is full is dropped, and its
// session is queued for a rebroadcast if that cost a side its presence.
func (l *Lobby) send(connID string, msg types.ServerMessage) {
	c, ok := l.clients[connID]
	if !ok {
		return
	}
	select {
	case c.outbox <- msg:
	default:
		l.log.Warn("dropping slow client", zap.String("conn_id", connID), zap.String("draft_id", c.draftID))
		close(c.outbox)
		delete(l.clients, connID)
		l.leaveRoom(connID, c)
		if c.team.Playing() && l.syncPresence(c.draftID, c.team) {
			l.stale[c.draftID] = struct{}{}
		}
	}
}

func (l *Lobby) broadcast(draftID string, msg types.ServerMessage) {
	for connID := range l.rooms[draftID] {
		l.send(connID, msg)
	}
}

// snapshot is the session as clients see it, with phase time left recomputed
// from the running timer.
func (l *Lobby) snapshot(draftID string) (*types.Snapshot, bool) {
	s, ok := l.reg.Get(draftID)
	if !ok {
		return nil, false
	}
	var left *int
	if ps := l.timers.PhaseState(draftID); ps.Active {
		left = &ps.TimeLeft
	}
	return types.NewSnapshot(s, left), true
}

func (l *Lobby) broadcastState(draftID string) {
	snap, ok := l.snapshot(draftID)
	if !ok {
		return
	}
	if _, watched := l.rooms[draftID]; !watched {
		return
	}
	l.versions[draftID]++
	l.broadcast(draftID, types.ServerMessage{
		Type:    types.MsgDraftStateUpdate,
		Version: l.versions[draftID],
		State:   snap,
	})
}
