package lobby

import (
	"errors"

	"go.uber.org/zap"

	"github.com/DoyleJ11/draft-arena/internal/engine"
	"github.com/DoyleJ11/draft-arena/internal/timer"
)

// handleTimer folds timer events into session state. Events for sessions that
// no longer exist are dropped.
func (l *Lobby) handleTimer(ev timer.Event) {
	switch ev.Kind {
	case timer.TimerStarted:
		start := ev.StartedAt
		left := timer.Remaining(ev.StartedAt, ev.Duration, ev.StartedAt)
		if l.reg.UpdateTimerState(ev.SessionID, &start, &left, true) {
			l.broadcastState(ev.SessionID)
		}

	case timer.TimerCleared:
		if l.reg.UpdateTimerState(ev.SessionID, nil, nil, false) {
			l.broadcastState(ev.SessionID)
		}

	case timer.PhaseExpired:
		l.handlePhaseExpired(ev.SessionID, ev.PhaseIndex)

	case timer.SwapTick:
		err := l.reg.Update(ev.SessionID, func(s *engine.Session) error {
			engine.UpdateSwapPhase(s, ev.TimeLeft, ev.CanSwap)
			return nil
		})
		if err == nil {
			l.broadcastState(ev.SessionID)
		}

	case timer.SwapCompleted:
		l.log.Info("swap phase complete", zap.String("draft_id", ev.SessionID))
	}
}

// handlePhaseExpired commits the staged champion for the expired phase, or the
// empty champion when nothing legal is staged. The phase must still be the one
// the timer was armed for; a manual confirm may have won the race.
func (l *Lobby) handlePhaseExpired(draftID string, phaseIndex int) {
	var (
		acted    bool
		complete bool
	)
	err := l.reg.Update(draftID, func(s *engine.Session) error {
		if !s.InProgress || s.CurrentPhaseIndex != phaseIndex {
			return nil
		}
		phase, ok := engine.PhaseAt(s.CurrentPhaseIndex)
		if !ok {
			return nil
		}

		if err := engine.SelectChampion(s, s.PendingChampion, phase.Team); err != nil {
			l.log.Info("staged champion no longer legal, committing empty",
				zap.String("draft_id", draftID),
				zap.Int("phase", phaseIndex),
				zap.Error(err),
			)
			if err := engine.SelectChampion(s, nil, phase.Team); err != nil {
				return err
			}
		}
		var err error
		complete, err = engine.AdvancePhase(s)
		acted = err == nil
		return err
	})
	if errors.Is(err, engine.ErrSessionNotFound) {
		return
	}
	if err != nil {
		l.log.Error("phase expiry failed", zap.String("draft_id", draftID), zap.Int("phase", phaseIndex), zap.Error(err))
		return
	}
	if !acted {
		l.log.Debug("stale phase expiry ignored", zap.String("draft_id", draftID), zap.Int("phase", phaseIndex))
		return
	}
	l.log.Info("phase auto-confirmed", zap.String("draft_id", draftID), zap.Int("phase", phaseIndex))
	l.afterCommit(draftID, complete)
}
