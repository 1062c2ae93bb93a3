package game

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/scythe504/taboo-backend/internal"
)

// =============================================================================
// GAME FLOW - SUBSCRIPTION & INITIALIZATION
// =============================================================================

// Subscribe attaches a roster player's notifier to a waiting match. The
// subscription that completes the roster starts the match; that decision is
// made under the same lock as the insertion so it happens exactly once.
func (e *Engine) Subscribe(code, playerID string, notifier internal.Notifier) (internal.PlayerDTO, error) {
	match := e.GetMatch(code)
	if match == nil {
		return internal.PlayerDTO{}, ErrMatchNotFound
	}
	logger := log.WithField("match", code)

	// --- Critical section ---
	match.Mu.Lock()
	if match.Status != internal.StatusWaitingForPlayers {
		match.Mu.Unlock()
		return internal.PlayerDTO{}, ErrMatchAlreadyStarted
	}
	entry, ok := match.RosterEntry(playerID)
	if !ok {
		match.Mu.Unlock()
		return internal.PlayerDTO{}, ErrPlayerNotAuthorized
	}
	if _, exists := match.Players[playerID]; exists {
		match.Mu.Unlock()
		return internal.PlayerDTO{}, ErrPlayerAlreadyInMatch
	}

	match.Players[playerID] = &internal.Player{
		PlayerDTO: entry,
		Notifier:  notifier,
		JoinedAt:  time.Now(),
	}
	logger.Infof("[Subscribe] Player %s (%s) subscribed (%d/%d)",
		entry.Id, entry.Nickname, len(match.Players), len(match.Roster))

	start := match.IsFull()
	var out outbox
	if start {
		match.Status = internal.StatusInProgress
		out.toAll(match, internal.MsgMatchInitialized, internal.MatchInitializedData{
			MatchCode: match.Code,
			Players:   match.PublicPlayers(),
		})
	}
	match.Mu.Unlock()
	// --- End critical section ---

	if start {
		logger.Info("[Subscribe] Roster complete, starting match")
		e.deliver(match, out)
		e.startRound(match)
	}
	return entry, nil
}
