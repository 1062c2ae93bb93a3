package game

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/scythe504/taboo-backend/internal"
	"github.com/scythe504/taboo-backend/internal/utils"
)

// =============================================================================
// TURN HANDLING - CLUES, GUESSES, PASSES
// =============================================================================

// playing reports whether clues and guesses are accepted in status.
func playing(status internal.MatchStatus) bool {
	return status == internal.StatusInProgress || status == internal.StatusSuddenDeath
}

// SubmitClue relays the clue giver's clue to their partner and records it in
// the team's history. Anything out of turn is ignored.
func (e *Engine) SubmitClue(code, senderID, text string) {
	match := e.GetMatch(code)
	if match == nil {
		return
	}
	logger := log.WithField("match", code)

	match.Mu.Lock()
	sender, ok := match.Players[senderID]
	if !ok || !playing(match.Status) || sender.Role != internal.RoleClueGiver || utils.IsBlank(text) {
		logger.Debugf("[SubmitClue] Ignoring clue from %s", senderID)
		match.Mu.Unlock()
		return
	}
	word, ok := match.CurrentWord(sender.Team)
	if !ok {
		match.Mu.Unlock()
		return
	}

	clue := strings.TrimSpace(text)
	state := match.Teams[sender.Team]
	state.History = append(state.History, internal.TurnHistoryEntry{
		TurnID: len(state.History) + 1,
		Word:   word,
		Clue:   clue,
	})

	var out outbox
	if partner := match.TeamMember(sender.Team, internal.RoleGuesser); partner != nil {
		out.add(partner.Id, internal.MsgClueReceived, internal.ClueReceivedData{Text: clue})
	}
	match.Mu.Unlock()

	e.deliver(match, out)
}

// SubmitGuess checks a guess against the team's current word. A correct guess
// scores a point and moves the team on; during sudden death it ends the match.
func (e *Engine) SubmitGuess(code, senderID, text string) {
	match := e.GetMatch(code)
	if match == nil {
		return
	}
	logger := log.WithField("match", code)

	// --- Critical section ---
	match.Mu.Lock()
	sender, ok := match.Players[senderID]
	if !ok || !playing(match.Status) || sender.Role != internal.RoleGuesser || utils.IsBlank(text) {
		logger.Debugf("[SubmitGuess] Ignoring guess from %s", senderID)
		match.Mu.Unlock()
		return
	}
	team := sender.Team
	word, ok := match.CurrentWord(team)
	if !ok {
		match.Mu.Unlock()
		return
	}

	guess := strings.TrimSpace(text)
	var out outbox
	if !utils.GuessMatches(guess, word.WordES, word.WordEN) {
		out.toTeam(match, team, internal.MsgGuessResult, internal.GuessResultData{
			IsCorrect: false,
			Team:      team,
			NewScore:  match.Score(team),
			Guess:     guess,
		})
		match.Mu.Unlock()
		e.deliver(match, out)
		return
	}

	score := match.AddScore(team, 1)
	out.toAll(match, internal.MsgGuessResult, internal.GuessResultData{
		IsCorrect: true,
		Team:      team,
		NewScore:  score,
		Guess:     guess,
	})
	logger.Infof("[SubmitGuess] Team %s guessed %q, score %d", team, word.WordEN, score)

	if match.Status == internal.StatusSuddenDeath {
		match.Finish()
		summary := summarize(match, &team)
		match.Mu.Unlock()

		e.deliver(match, out)
		e.completeMatch(match, summary)
		return
	}

	match.Teams[team].WordIndex++
	out.teamWords(match, team)
	match.Mu.Unlock()
	// --- End critical section ---

	e.deliver(match, out)
}

// PassTurn skips the team's current word. Each team may pass once per round.
func (e *Engine) PassTurn(code, senderID string) {
	match := e.GetMatch(code)
	if match == nil {
		return
	}
	logger := log.WithField("match", code)

	match.Mu.Lock()
	sender, ok := match.Players[senderID]
	if !ok || match.Status != internal.StatusInProgress || sender.Role != internal.RoleClueGiver {
		logger.Debugf("[PassTurn] Ignoring pass from %s", senderID)
		match.Mu.Unlock()
		return
	}
	state := match.Teams[sender.Team]
	word, ok := match.CurrentWord(sender.Team)
	if !ok || state.PassedThisRound {
		match.Mu.Unlock()
		return
	}

	state.PassedThisRound = true
	state.History = append(state.History, internal.TurnHistoryEntry{
		TurnID: len(state.History) + 1,
		Word:   word,
		Passed: true,
	})
	state.WordIndex++
	logger.Infof("[PassTurn] Team %s passed on %q", sender.Team, word.WordEN)

	var out outbox
	if partner := match.TeamMember(sender.Team, internal.RoleGuesser); partner != nil {
		out.add(partner.Id, internal.MsgPartnerPassed, internal.PartnerPassedData{PlayerID: sender.Id})
	}
	out.teamWords(match, sender.Team)
	match.Mu.Unlock()

	e.deliver(match, out)
}
