package game

import (
	log "github.com/sirupsen/logrus"

	"github.com/scythe504/taboo-backend/internal"
)

// =============================================================================
// VALIDATION - PEER REVIEW
// =============================================================================

// SubmitVotes records a player's review of the opposing team's turns. The last
// eligible vote resolves the phase.
func (e *Engine) SubmitVotes(code, senderID string, votes []internal.ValidationVote) {
	match := e.GetMatch(code)
	if match == nil {
		return
	}
	logger := log.WithField("match", code)

	match.Mu.Lock()
	if match.Status != internal.StatusValidating || votes == nil {
		match.Mu.Unlock()
		return
	}
	sender, ok := match.Players[senderID]
	if !ok || !match.EligibleVoters[senderID] || match.VotedPlayerIDs[senderID] {
		logger.Debugf("[SubmitVotes] Ignoring votes from %s", senderID)
		match.Mu.Unlock()
		return
	}

	match.ReceivedVotes = append(match.ReceivedVotes, internal.TeamVotes{
		VoterID:    senderID,
		VotingTeam: sender.Team,
		Votes:      append([]internal.ValidationVote(nil), votes...),
	})
	match.VotedPlayerIDs[senderID] = true
	logger.Infof("[SubmitVotes] Player %s voted (%d/%d)",
		senderID, len(match.VotedPlayerIDs), len(match.EligibleVoters))

	if len(match.VotedPlayerIDs) < len(match.EligibleVoters) {
		match.Mu.Unlock()
		return
	}

	out, next, summary := e.resolveVotes(match)
	match.Mu.Unlock()

	e.afterVotes(match, out, next, summary)
}

// expireValidation resolves whatever votes arrived before the deadline.
func (e *Engine) expireValidation(match *internal.Match, timer *internal.PhaseTimer) {
	match.Mu.Lock()
	if match.Status != internal.StatusValidating || !isActiveTimer(match, timer) {
		match.Mu.Unlock()
		return
	}
	log.WithField("match", match.Code).Infof("[expireValidation] Deadline reached with %d/%d votes",
		len(match.VotedPlayerIDs), len(match.EligibleVoters))

	out, next, summary := e.resolveVotes(match)
	match.Mu.Unlock()

	e.afterVotes(match, out, next, summary)
}

// resolveVotes applies penalties and picks the next phase. It leaves the
// Validating status, so whichever of the last vote and the deadline gets here
// first wins and the other finds nothing to do. Caller holds match.Mu.
func (e *Engine) resolveVotes(match *internal.Match) (outbox, transition, matchSummary) {
	if match.Status != internal.StatusValidating {
		return nil, stayPut, matchSummary{}
	}
	if match.ValidationTimer != nil {
		match.ValidationTimer.Cancel()
		match.ValidationTimer = nil
	}

	penalties := ComputePenalties(match.ReceivedVotes, match.Teams, e.cfg.MultiWordPenalty, e.cfg.SynonymPenalty)
	match.AddScore(internal.TeamRed, -penalties[internal.TeamRed])
	match.AddScore(internal.TeamBlue, -penalties[internal.TeamBlue])

	var out outbox
	out.toAll(match, internal.MsgValidationComplete, internal.ValidationCompleteData{
		RedScore:    match.RedScore,
		BlueScore:   match.BlueScore,
		RedPenalty:  penalties[internal.TeamRed],
		BluePenalty: penalties[internal.TeamBlue],
	})

	logger := log.WithField("match", match.Code)
	logger.Infof("[resolveVotes] Round %d penalties red=%d blue=%d, scores red=%d blue=%d",
		match.CurrentRound, penalties[internal.TeamRed], penalties[internal.TeamBlue],
		match.RedScore, match.BlueScore)

	switch {
	case match.CurrentRound < e.cfg.TotalRounds:
		match.Status = internal.StatusInProgress
		match.ResetTeams()
		return out, toNextRound, matchSummary{}

	case match.RedScore != match.BlueScore:
		winner := match.Winner()
		match.Finish()
		return out, toGameOver, summarize(match, winner)

	default:
		match.Status = internal.StatusSuddenDeath
		match.ResetTeams()
		return out, toSuddenDeath, matchSummary{}
	}
}

// ComputePenalties totals the penalty each team receives from its opponents'
// ballots. A turn flagged by several voters counts once per flag kind. Votes
// on pass turns or unknown turn ids are ignored.
func ComputePenalties(ballots []internal.TeamVotes, teams map[internal.Team]*internal.TeamState, multiWordPenalty, synonymPenalty int) map[internal.Team]int {
	type flagged struct {
		multiWord map[int]bool
		synonym   map[int]bool
	}
	byTeam := map[internal.Team]*flagged{
		internal.TeamRed:  {multiWord: map[int]bool{}, synonym: map[int]bool{}},
		internal.TeamBlue: {multiWord: map[int]bool{}, synonym: map[int]bool{}},
	}

	for _, ballot := range ballots {
		if !ballot.VotingTeam.Valid() {
			continue
		}
		judged := ballot.VotingTeam.Opponent()
		state := teams[judged]
		if state == nil {
			continue
		}
		for _, vote := range ballot.Votes {
			if vote.TurnID < 1 || vote.TurnID > len(state.History) {
				continue
			}
			if state.History[vote.TurnID-1].Passed {
				continue
			}
			if vote.MultiWord {
				byTeam[judged].multiWord[vote.TurnID] = true
			}
			if vote.Synonym {
				byTeam[judged].synonym[vote.TurnID] = true
			}
		}
	}

	penalties := make(map[internal.Team]int, 2)
	for team, f := range byTeam {
		penalties[team] = len(f.multiWord)*multiWordPenalty + len(f.synonym)*synonymPenalty
	}
	return penalties
}
