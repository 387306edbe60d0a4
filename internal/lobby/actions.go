package lobby

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/DoyleJ11/draft-arena/internal/archive"
	"github.com/DoyleJ11/draft-arena/internal/engine"
	"github.com/DoyleJ11/draft-arena/internal/types"
)

const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeUnknownAction = "UNKNOWN_ACTION"
	CodeNextGame      = "NEXT_GAME_CREATION_ERROR"

	unexpectedMessage = "An unexpected error occurred"
)

// fallbackCodes label failures that carry no validation code of their own.
var fallbackCodes = map[string]string{
	types.MsgCreateDraft:         "CREATE_DRAFT_ERROR",
	types.MsgJoinDraft:           "JOIN_DRAFT_ERROR",
	types.MsgToggleReady:         "TOGGLE_READY_ERROR",
	types.MsgSetPendingSelection: "SET_PENDING_ERROR",
	types.MsgSelectChampion:      "SELECT_CHAMPION_ERROR",
	types.MsgReorderTeam:         "REORDER_ERROR",
	types.MsgChooseSide:          "CHOOSE_SIDE_ERROR",
	types.MsgToggleNextGameReady: "TOGGLE_NEXT_GAME_READY_ERROR",
}

func (l *Lobby) handleInbound(connID string, msg types.ClientMessage) {
	c, ok := l.clients[connID]
	if !ok {
		return
	}
	if msg.DraftID == "" {
		msg.DraftID = c.draftID
	}

	var err error
	switch msg.Type {
	case types.MsgCreateDraft:
		err = l.createDraft(connID, c, msg)
	case types.MsgJoinDraft:
		err = l.joinDraft(connID, c, msg)
	case types.MsgToggleReady:
		err = l.toggleReady(msg)
	case types.MsgSetPendingSelection:
		err = l.setPendingSelection(msg)
	case types.MsgSelectChampion:
		err = l.selectChampion(msg)
	case types.MsgReorderTeam:
		err = l.reorderTeam(c, msg)
	case types.MsgChooseSide:
		err = l.chooseSide(c, msg)
	case types.MsgToggleNextGameReady:
		err = l.toggleNextGameReady(connID, msg)
	default:
		l.send(connID, types.ErrorMessage(CodeUnknownAction, fmt.Sprintf("Unknown message type: %q", msg.Type)))
		return
	}
	if err != nil {
		l.sendError(connID, msg.DraftID, err, fallbackCodes[msg.Type])
	}
}

// sendError reports err to connID alone. Validation errors keep their code and
// message; anything else is logged and masked.
func (l *Lobby) sendError(connID, draftID string, err error, fallback string) {
	var verr *engine.ValidationError
	if errors.As(err, &verr) {
		l.log.Debug("action rejected",
			zap.String("conn_id", connID),
			zap.String("draft_id", draftID),
			zap.String("code", verr.Code),
			zap.String("reason", verr.Message),
		)
		l.send(connID, types.ErrorMessage(verr.Code, verr.Message))
		return
	}
	l.log.Error("action failed", zap.String("conn_id", connID), zap.String("draft_id", draftID), zap.String("code", fallback), zap.Error(err))
	l.send(connID, types.ErrorMessage(fallback, unexpectedMessage))
}

func (l *Lobby) createDraft(connID string, c *client, msg types.ClientMessage) error {
	if _, err := l.reg.CreateSession(msg.DraftID, msg.BlueTeamName, msg.RedTeamName, msg.FearlessBans, msg.GameNumber); err != nil {
		return err
	}

	team := c.team
	if c.draftID != msg.DraftID {
		team = ""
	}
	l.bind(connID, c, msg.DraftID, team)
	l.broadcastState(msg.DraftID)
	return nil
}

// joinDraft binds the connection to a side: a role literal or exact team name
// first, then an attempt to claim an open slot under a custom name. A join
// that resolves to nothing still watches the session.
func (l *Lobby) joinDraft(connID string, c *client, msg types.ClientMessage) error {
	s, err := l.reg.EnsureSession(msg.DraftID)
	if err != nil {
		return err
	}

	team := engine.ResolveTeamSide(msg.Team, &s)
	if team == "" && msg.Team != "" && !engine.IsRoleName(msg.Team) {
		assigned, err := l.reg.AssignTeamName(msg.DraftID, msg.Team)
		if err != nil {
			l.log.Info("could not assign team name", zap.String("draft_id", msg.DraftID), zap.String("name", msg.Team), zap.Error(err))
		}
		team = assigned
	}
	l.log.Info("client joined",
		zap.String("conn_id", connID),
		zap.String("draft_id", msg.DraftID),
		zap.String("requested", msg.Team),
		zap.String("team", string(team)),
	)

	l.bind(connID, c, msg.DraftID, team)
	l.broadcastState(msg.DraftID)
	return nil
}

func (l *Lobby) toggleReady(msg types.ClientMessage) error {
	var started bool
	err := l.reg.Update(msg.DraftID, func(s *engine.Session) error {
		var err error
		started, err = engine.ToggleTeamReady(s, engine.Team(msg.Team))
		return err
	})
	if err != nil {
		return err
	}
	if started {
		l.log.Info("draft started", zap.String("draft_id", msg.DraftID))
		l.timers.StartPhase(msg.DraftID, 0)
	}
	l.broadcastState(msg.DraftID)
	return nil
}

func (l *Lobby) setPendingSelection(msg types.ClientMessage) error {
	team := engine.Team(msg.Team)
	err := l.reg.Update(msg.DraftID, func(s *engine.Session) error {
		return engine.SetPendingSelection(s, msg.Champion, team)
	})
	if err != nil {
		return err
	}
	l.broadcast(msg.DraftID, types.ServerMessage{
		Type:    types.MsgPendingSelectionUpdate,
		Version: l.versions[msg.DraftID],
		Pending: &types.PendingSelection{Champion: msg.Champion, Team: team},
	})
	l.broadcastState(msg.DraftID)
	return nil
}

func (l *Lobby) selectChampion(msg types.ClientMessage) error {
	var complete bool
	err := l.reg.Update(msg.DraftID, func(s *engine.Session) error {
		if err := engine.SelectChampion(s, msg.Champion, engine.Team(msg.Team)); err != nil {
			return err
		}
		var err error
		complete, err = engine.AdvancePhase(s)
		return err
	})
	if err != nil {
		return err
	}
	l.timers.ClearPhase(msg.DraftID)
	l.afterCommit(msg.DraftID, complete)
	return nil
}

// afterCommit arms whatever timer follows a committed phase and broadcasts.
func (l *Lobby) afterCommit(draftID string, complete bool) {
	if !complete {
		if s, ok := l.reg.Get(draftID); ok {
			l.timers.StartPhase(draftID, s.CurrentPhaseIndex)
		}
		l.broadcastState(draftID)
		return
	}

	l.timers.StartSwap(draftID)
	s, ok := l.reg.Get(draftID)
	if ok {
		l.log.Info("draft complete", zap.String("draft_id", draftID), zap.Int("game", s.GameNumber))
		l.rec.Record(archive.FromSession(s, l.timers.Config().Now()))
		if snap, ok := l.snapshot(draftID); ok {
			l.broadcast(draftID, types.ServerMessage{
				Type:    types.MsgDraftComplete,
				Version: l.versions[draftID],
				State:   snap,
			})
		}
	}
	l.broadcastState(draftID)
}

// reorderTeam silently ignores a connection reordering the other side, so the
// requester learns nothing about that side's state.
func (l *Lobby) reorderTeam(c *client, msg types.ClientMessage) error {
	team := engine.Team(msg.Team)
	if c.team != team {
		l.log.Info("ignored reorder for other team",
			zap.String("draft_id", msg.DraftID),
			zap.String("team", string(c.team)),
			zap.String("target", msg.Team),
		)
		return nil
	}
	err := l.reg.Update(msg.DraftID, func(s *engine.Session) error {
		return engine.ReorderTeam(s, team, msg.SourceIndex, msg.TargetIndex)
	})
	if err != nil {
		return err
	}
	l.broadcast(msg.DraftID, types.ServerMessage{
		Type:    types.MsgTeamReorder,
		Version: l.versions[msg.DraftID],
		Reorder: &types.Reorder{Team: team, SourceIndex: msg.SourceIndex, TargetIndex: msg.TargetIndex},
	})
	l.broadcastState(msg.DraftID)
	return nil
}

// chooseSide, unlike reorderTeam, tells the requester when it speaks for the
// other side.
func (l *Lobby) chooseSide(c *client, msg types.ClientMessage) error {
	team := engine.Team(msg.Team)
	if c.team != team {
		return engine.Invalid(engine.ErrTeamMismatch, "Team %s cannot choose side for %s", c.team, team)
	}
	err := l.reg.Update(msg.DraftID, func(s *engine.Session) error {
		return engine.ChooseSide(s, team, engine.Team(msg.SideChoice))
	})
	if err != nil {
		return err
	}
	l.broadcastState(msg.DraftID)
	return nil
}

func (l *Lobby) toggleNextGameReady(connID string, msg types.ClientMessage) error {
	var bothReady bool
	err := l.reg.Update(msg.DraftID, func(s *engine.Session) error {
		if err := engine.ToggleNextGameReady(s, engine.Team(msg.Team)); err != nil {
			return err
		}
		bothReady = s.BlueNextGameReady && s.RedNextGameReady
		return nil
	})
	if err != nil {
		return err
	}
	l.broadcastState(msg.DraftID)
	if !bothReady {
		return nil
	}

	var next engine.NextGame
	err = l.reg.Update(msg.DraftID, func(s *engine.Session) error {
		var err error
		if next, err = engine.CreateNextGameDraft(s); err != nil {
			return err
		}
		engine.TransitionToNextGame(s, next)
		return nil
	})
	if err != nil {
		l.sendError(connID, msg.DraftID, err, CodeNextGame)
		return nil
	}

	l.log.Info("series advanced",
		zap.String("draft_id", msg.DraftID),
		zap.Int("game", next.GameNumber),
		zap.Int("fearless_bans", len(next.FearlessBans)),
	)
	if next.BlueSide == engine.TeamRed {
		// each captain keeps its team, which now plays the other side
		for id := range l.rooms[msg.DraftID] {
			if cl, ok := l.clients[id]; ok && cl.team.Playing() {
				cl.team = cl.team.Opponent()
			}
		}
	}

	l.timers.ClearAll(msg.DraftID)
	l.timers.StartPhase(msg.DraftID, 0)
	l.broadcast(msg.DraftID, types.ServerMessage{
		Type:    types.MsgNextGameDraftReady,
		Version: l.versions[msg.DraftID],
		NextGame: &types.NextGameReady{
			DraftID:    msg.DraftID,
			BlueSide:   next.BlueSide,
			RedSide:    next.RedSide,
			GameNumber: next.GameNumber,
		},
	})
	l.broadcastState(msg.DraftID)
	return nil
}
