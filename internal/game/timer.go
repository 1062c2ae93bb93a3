package game

import (
	"context"
	"errors"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/scythe504/taboo-backend/internal"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

// timerSlot returns the match field that holds timers of kind. The sudden
// death countdown shares the round slot.
func timerSlot(match *internal.Match, kind internal.TimerKind) **internal.PhaseTimer {
	if kind == internal.TimerValidation {
		return &match.ValidationTimer
	}
	return &match.RoundTimer
}

// startPhaseTimer replaces the match's timer of the given kind and starts its
// countdown. onExpire runs on natural expiry only, never after a cancel.
// Caller holds match.Mu.
func (e *Engine) startPhaseTimer(match *internal.Match, kind internal.TimerKind, duration time.Duration, onExpire func(*internal.PhaseTimer)) *internal.PhaseTimer {
	slot := timerSlot(match, kind)
	if *slot != nil && (*slot).Cancel != nil {
		(*slot).Cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	timer := &internal.PhaseTimer{
		Kind:      kind,
		StartTime: time.Now(),
		Duration:  duration,
		Context:   ctx,
		Cancel:    cancel,
	}
	*slot = timer

	log.WithField("match", match.Code).Debugf("[startPhaseTimer] %s timer started for %v", kind, duration)
	go e.runPhaseTimer(match, timer, onExpire)
	return timer
}

func (e *Engine) runPhaseTimer(match *internal.Match, timer *internal.PhaseTimer, onExpire func(*internal.PhaseTimer)) {
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()
	defer timer.Cancel()

	for {
		select {
		case <-ticker.C:
			e.broadcastTimerTick(match, timer)

		case <-timer.Context.Done():
			if errors.Is(timer.Context.Err(), context.DeadlineExceeded) {
				log.WithField("match", match.Code).Debugf("[runPhaseTimer] %s timer expired", timer.Kind)
				onExpire(timer)
			}
			return
		}
	}
}

// isActiveTimer reports whether timer is still the live timer of its kind.
// Caller holds match.Mu.
func isActiveTimer(match *internal.Match, timer *internal.PhaseTimer) bool {
	return *timerSlot(match, timer.Kind) == timer
}

// broadcastTimerTick sends the seconds left on timer to every player.
func (e *Engine) broadcastTimerTick(match *internal.Match, timer *internal.PhaseTimer) {
	match.Mu.Lock()
	if !isActiveTimer(match, timer) {
		match.Mu.Unlock()
		return
	}

	remaining := max(timer.Duration-time.Since(timer.StartTime), 0)
	msgType := internal.MsgRoundTimerTick
	if timer.Kind == internal.TimerValidation {
		msgType = internal.MsgValidationTimerTick
	}

	var out outbox
	out.toAll(match, msgType, internal.TimerTickData{
		SecondsLeft: int(math.Ceil(remaining.Seconds())),
	})
	match.Mu.Unlock()

	// The phase may have moved on while the lock was released.
	e.deliverWhen(match, out, func() bool { return isActiveTimer(match, timer) })
}
