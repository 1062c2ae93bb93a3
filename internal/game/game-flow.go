package game

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/scythe504/taboo-backend/internal"
	"github.com/scythe504/taboo-backend/internal/ports"
)

// =============================================================================
// GAME FLOW - ROUND MANAGEMENT
// =============================================================================

const collaboratorTimeout = 5 * time.Second

// transition is what happens after votes have been processed.
type transition int

const (
	stayPut transition = iota
	toNextRound
	toSuddenDeath
	toGameOver
)

// matchSummary is the final state handed to persistence and to clients.
type matchSummary struct {
	winner        *internal.Team
	redScore      int
	blueScore     int
	redPlayerIDs  []string
	bluePlayerIDs []string
}

// summarize captures the final state. Caller holds match.Mu.
func summarize(match *internal.Match, winner *internal.Team) matchSummary {
	return matchSummary{
		winner:        winner,
		redScore:      match.RedScore,
		blueScore:     match.BlueScore,
		redPlayerIDs:  match.TeamPlayerIDs(internal.TeamRed),
		bluePlayerIDs: match.TeamPlayerIDs(internal.TeamBlue),
	}
}

// fetchTeamWords pulls a fresh word list for each team. A short list is fatal.
func (e *Engine) fetchTeamWords(count int) (map[internal.Team][]internal.SecretWord, error) {
	if e.words == nil {
		return nil, ErrNotEnoughWords
	}
	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()

	lists := make(map[internal.Team][]internal.SecretWord, 2)
	for _, team := range []internal.Team{internal.TeamRed, internal.TeamBlue} {
		words, err := e.words.GetRandomWords(ctx, count)
		if err != nil {
			return nil, fmt.Errorf("fetch words for %s: %w", team, err)
		}
		if len(words) < count {
			return nil, fmt.Errorf("%w: team %s got %d of %d", ErrNotEnoughWords, team, len(words), count)
		}
		lists[team] = words
	}
	return lists, nil
}

// startRound begins the next round of a match that is InProgress.
func (e *Engine) startRound(match *internal.Match) {
	logger := log.WithField("match", match.Code)

	words, err := e.fetchTeamWords(e.cfg.WordsPerRound)
	if err != nil {
		logger.Errorf("[startRound] %v", err)
		e.cancelMatch(match, ErrNotEnoughWords.Error())
		return
	}

	// --- Critical section ---
	match.Mu.Lock()
	if match.Status != internal.StatusInProgress {
		logger.Infof("[startRound] Match is %s, not starting a round", match.Status)
		match.Mu.Unlock()
		return
	}

	match.CurrentRound++
	if match.CurrentRound > 1 {
		internal.RotateRoles(match.Players)
	}

	var out outbox
	out.toAll(match, internal.MsgRoundStarted, internal.RoundStartedData{
		RoundNumber: match.CurrentRound,
		TotalRounds: e.cfg.TotalRounds,
		Players:     match.PublicPlayers(),
	})

	match.ResetTeams()
	for team, list := range words {
		match.Teams[team].Words = list
	}

	e.startPhaseTimer(match, internal.TimerRound, e.cfg.RoundDuration, func(timer *internal.PhaseTimer) {
		e.beginValidation(match, timer)
	})

	out.teamWords(match, internal.TeamRed)
	out.teamWords(match, internal.TeamBlue)

	logger.Infof("[startRound] Round %d/%d started", match.CurrentRound, e.cfg.TotalRounds)
	match.Mu.Unlock()
	// --- End critical section ---

	e.deliver(match, out)
}

// beginValidation closes the round and asks each team to review the other
// team's clues.
func (e *Engine) beginValidation(match *internal.Match, timer *internal.PhaseTimer) {
	logger := log.WithField("match", match.Code)

	match.Mu.Lock()
	if match.Status != internal.StatusInProgress || !isActiveTimer(match, timer) {
		match.Mu.Unlock()
		return
	}

	timer.Cancel()
	match.RoundTimer = nil
	match.Status = internal.StatusValidating
	match.ResetVotes()

	var out outbox
	for _, judged := range []internal.Team{internal.TeamRed, internal.TeamBlue} {
		history := match.Teams[judged].History
		if len(history) == 0 {
			continue
		}
		prompt := internal.BeginValidationData{
			JudgedTeam:  judged,
			TurnHistory: append([]internal.TurnHistoryEntry(nil), history...),
		}
		for _, entry := range match.Roster {
			if p, ok := match.Players[entry.Id]; ok && p.Team == judged.Opponent() {
				match.EligibleVoters[p.Id] = true
				out.add(p.Id, internal.MsgBeginRoundValidation, prompt)
			}
		}
	}

	if len(match.EligibleVoters) == 0 {
		logger.Info("[beginValidation] No turns to review, processing votes immediately")
		resolved, next, summary := e.resolveVotes(match)
		match.Mu.Unlock()
		e.afterVotes(match, resolved, next, summary)
		return
	}

	e.startPhaseTimer(match, internal.TimerValidation, e.cfg.ValidationDuration, func(timer *internal.PhaseTimer) {
		e.expireValidation(match, timer)
	})
	logger.Infof("[beginValidation] Round %d in review, %d eligible voters",
		match.CurrentRound, len(match.EligibleVoters))
	match.Mu.Unlock()

	e.deliver(match, out)
}

// afterVotes delivers the vote outcome and performs the resulting transition.
func (e *Engine) afterVotes(match *internal.Match, out outbox, next transition, summary matchSummary) {
	e.deliver(match, out)

	switch next {
	case toNextRound:
		e.startRound(match)
	case toSuddenDeath:
		e.startSuddenDeath(match)
	case toGameOver:
		e.completeMatch(match, summary)
	}
}

// =============================================================================
// GAME FLOW - SUDDEN DEATH
// =============================================================================

// startSuddenDeath gives each team a single word; the first correct guess wins.
func (e *Engine) startSuddenDeath(match *internal.Match) {
	logger := log.WithField("match", match.Code)

	words, err := e.fetchTeamWords(1)
	if err != nil {
		logger.Errorf("[startSuddenDeath] %v", err)
		e.cancelMatch(match, ErrNotEnoughWords.Error())
		return
	}

	match.Mu.Lock()
	if match.Status != internal.StatusSuddenDeath {
		match.Mu.Unlock()
		return
	}

	var out outbox
	out.toAll(match, internal.MsgSuddenDeathStarted, internal.SuddenDeathStartedData{
		RedScore:  match.RedScore,
		BlueScore: match.BlueScore,
	})

	match.ResetTeams()
	for team, list := range words {
		match.Teams[team].Words = list
	}

	e.startPhaseTimer(match, internal.TimerSuddenDeath, e.cfg.SuddenDeathDuration, func(timer *internal.PhaseTimer) {
		e.expireSuddenDeath(match, timer)
	})

	out.teamWords(match, internal.TeamRed)
	out.teamWords(match, internal.TeamBlue)

	logger.Infof("[startSuddenDeath] Tied at %d, sudden death started", match.RedScore)
	match.Mu.Unlock()

	e.deliver(match, out)
}

// expireSuddenDeath ends an unresolved sudden death as a draw.
func (e *Engine) expireSuddenDeath(match *internal.Match, timer *internal.PhaseTimer) {
	match.Mu.Lock()
	if match.Status != internal.StatusSuddenDeath || !isActiveTimer(match, timer) {
		match.Mu.Unlock()
		return
	}
	match.Finish()
	summary := summarize(match, nil)
	match.Mu.Unlock()

	log.WithField("match", match.Code).Info("[expireSuddenDeath] Nobody guessed, match drawn")
	e.completeMatch(match, summary)
}

// =============================================================================
// GAME FLOW - GAME OVER
// =============================================================================

// completeMatch runs the normal ending of a match that has already been marked
// finished: persistence, match-over notice, registry removal.
func (e *Engine) completeMatch(match *internal.Match, summary matchSummary) {
	logger := log.WithField("match", match.Code)

	e.persistResult(match.Code, summary)

	match.Mu.Lock()
	var out outbox
	out.toAll(match, internal.MsgMatchOver, internal.MatchOverData{
		Winner:    summary.winner,
		RedScore:  summary.redScore,
		BlueScore: summary.blueScore,
	})
	match.Mu.Unlock()

	winner := "draw"
	if summary.winner != nil {
		winner = string(*summary.winner)
	}
	logger.Infof("[completeMatch] Match over: red=%d blue=%d winner=%s",
		summary.redScore, summary.blueScore, winner)

	e.deliver(match, out)
	e.removeMatch(match)
}

// persistResult records the outcome. Failures are logged and never stop the
// match-over notification.
func (e *Engine) persistResult(code string, summary matchSummary) {
	logger := log.WithField("match", code)
	if e.results == nil {
		logger.Debug("[persistResult] No result store configured")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()

	err := e.results.SaveMatchResult(ctx, ports.MatchResult{
		MatchCode:     code,
		RedScore:      summary.redScore,
		BlueScore:     summary.blueScore,
		RedPlayerIDs:  summary.redPlayerIDs,
		BluePlayerIDs: summary.bluePlayerIDs,
	})
	if err != nil {
		logger.Errorf("[persistResult] Failed to save match result: %v", err)
	}

	if summary.winner == nil {
		return
	}
	winners := summary.redPlayerIDs
	if *summary.winner == internal.TeamBlue {
		winners = summary.bluePlayerIDs
	}
	if err := e.results.AwardPointsToWinners(ctx, winners, e.cfg.PointsPerWin); err != nil {
		logger.Errorf("[persistResult] Failed to award points to %v: %v", winners, err)
	}
}
