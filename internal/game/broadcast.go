package game

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/scythe504/taboo-backend/internal"
)

// =============================================================================
// BROADCASTING & MESSAGING
// =============================================================================

type delivery struct {
	playerID string
	msg      any
}

// outbox collects notifications while the match lock is held so they can be
// delivered after it is released.
type outbox []delivery

func (o *outbox) add(playerID string, msgType string, data any) {
	*o = append(*o, delivery{
		playerID: playerID,
		msg:      internal.Message[any]{Type: msgType, Data: data},
	})
}

// toAll queues a message for every subscribed player, in roster order.
// Caller holds match.Mu.
func (o *outbox) toAll(match *internal.Match, msgType string, data any) {
	for _, entry := range match.Roster {
		if _, ok := match.Players[entry.Id]; ok {
			o.add(entry.Id, msgType, data)
		}
	}
}

// toTeam queues a message for both members of team. Caller holds match.Mu.
func (o *outbox) toTeam(match *internal.Match, team internal.Team, msgType string, data any) {
	for _, entry := range match.Roster {
		if p, ok := match.Players[entry.Id]; ok && p.Team == team {
			o.add(entry.Id, msgType, data)
		}
	}
}

// teamWords queues the team's current word for both members: the clue giver
// gets the full word, the guesser only the description. A team with no word
// left gets the round-complete sentinel. Caller holds match.Mu.
func (o *outbox) teamWords(match *internal.Match, team internal.Team) {
	word, ok := match.CurrentWord(team)
	for _, role := range []internal.Role{internal.RoleClueGiver, internal.RoleGuesser} {
		p := match.TeamMember(team, role)
		if p == nil {
			continue
		}
		if !ok {
			o.add(p.Id, internal.MsgNewSecretWord, internal.RoundCompleteWord())
			continue
		}
		o.add(p.Id, internal.MsgNewSecretWord, internal.WordFor(word, role))
	}
}

// deliver sends queued messages. Each player is written to on its own
// goroutine so a slow or dead connection cannot hold up the others; messages
// for one player keep their queued order. Every player whose write fails is
// treated as disconnected. Caller must NOT hold match.Mu.
func (e *Engine) deliver(match *internal.Match, out outbox) {
	e.deliverWhen(match, out, nil)
}

// deliverWhen is deliver with a guard evaluated under match.Mu right before
// recipients are resolved. Nothing is sent when the guard returns false.
func (e *Engine) deliverWhen(match *internal.Match, out outbox, guard func() bool) {
	if len(out) == 0 {
		return
	}

	// 1. Resolve recipients under lock
	match.Mu.Lock()
	if guard != nil && !guard() {
		match.Mu.Unlock()
		return
	}
	recipients := make(map[string]*internal.Player, len(match.Players))
	queued := make(map[string][]any, len(match.Players))
	for _, d := range out {
		p, ok := match.Players[d.playerID]
		if !ok {
			continue
		}
		recipients[d.playerID] = p
		queued[d.playerID] = append(queued[d.playerID], d.msg)
	}
	match.Mu.Unlock()

	// 2. Fan out without holding the lock
	var (
		g        errgroup.Group
		failedMu sync.Mutex
		failed   []string
	)
	for playerID, msgs := range queued {
		player := recipients[playerID]
		g.Go(func() error {
			for _, msg := range msgs {
				if err := player.SafeWriteJSON(msg); err != nil {
					log.WithField("match", match.Code).Warnf("[deliver] Failed for player %s (%s): %v",
						player.Id, player.Nickname, err)
					failedMu.Lock()
					failed = append(failed, playerID)
					failedMu.Unlock()
					return err
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	// 3. Failed deliveries end the match
	for _, playerID := range failed {
		e.handleDisconnect(match, playerID, nil)
	}
}

// Disconnect reports that a player's connection is gone. When notifier is not
// nil the call only applies if it is still the player's active notifier.
func (e *Engine) Disconnect(code, playerID string, notifier internal.Notifier) {
	match := e.GetMatch(code)
	if match == nil {
		return
	}
	e.handleDisconnect(match, playerID, notifier)
}

// handleDisconnect removes the player and, unless the match is already over,
// cancels it for everybody else.
func (e *Engine) handleDisconnect(match *internal.Match, playerID string, notifier internal.Notifier) {
	logger := log.WithField("match", match.Code)

	match.Mu.Lock()
	player, ok := match.Players[playerID]
	if !ok || (notifier != nil && player.Notifier != notifier) {
		match.Mu.Unlock()
		return
	}
	delete(match.Players, playerID)
	logger.Infof("[handleDisconnect] Player %s (%s) disconnected in status %s",
		player.Id, player.Nickname, match.Status)

	if !match.Finish() {
		match.Mu.Unlock()
		return
	}

	var out outbox
	out.toAll(match, internal.MsgMatchCancelled, internal.MatchCancelledData{
		Reason:   fmt.Sprintf("player %s disconnected", player.Nickname),
		PlayerID: player.Id,
	})
	match.Mu.Unlock()

	logger.Info("[handleDisconnect] Match cancelled")
	e.deliver(match, out)
	e.removeMatch(match)
}

// cancelMatch ends a match abnormally, e.g. when the word corpus runs dry.
func (e *Engine) cancelMatch(match *internal.Match, reason string) {
	match.Mu.Lock()
	if !match.Finish() {
		match.Mu.Unlock()
		return
	}
	var out outbox
	out.toAll(match, internal.MsgMatchCancelled, internal.MatchCancelledData{Reason: reason})
	match.Mu.Unlock()

	log.WithField("match", match.Code).Warnf("[cancelMatch] Match cancelled: %s", reason)
	e.deliver(match, out)
	e.removeMatch(match)
}
