package internal

import (
	"time"
)

// NewMatch builds a match waiting for the given roster to subscribe.
func NewMatch(code string, roster []PlayerDTO) *Match {
	rosterCopy := make([]PlayerDTO, len(roster))
	copy(rosterCopy, roster)

	return &Match{
		Code:           code,
		Status:         StatusWaitingForPlayers,
		Roster:         rosterCopy,
		Players:        make(map[string]*Player, len(roster)),
		Teams:          newTeams(),
		ReceivedVotes:  make([]TeamVotes, 0),
		VotedPlayerIDs: make(map[string]bool),
		EligibleVoters: make(map[string]bool),
		CreatedAt:      time.Now(),
	}
}

func newTeams() map[Team]*TeamState {
	return map[Team]*TeamState{
		TeamRed:  {History: make([]TurnHistoryEntry, 0)},
		TeamBlue: {History: make([]TurnHistoryEntry, 0)},
	}
}

// Methods below assume the caller holds m.Mu.

func (m *Match) RosterEntry(playerID string) (PlayerDTO, bool) {
	for _, p := range m.Roster {
		if p.Id == playerID {
			return p, true
		}
	}
	return PlayerDTO{}, false
}

func (m *Match) IsFull() bool {
	return len(m.Players) == len(m.Roster)
}

// TeamMember returns the subscribed player holding role on team.
func (m *Match) TeamMember(team Team, role Role) *Player {
	for _, p := range m.Players {
		if p.Team == team && p.Role == role {
			return p
		}
	}
	return nil
}

func (m *Match) TeamPlayerIDs(team Team) []string {
	ids := make([]string, 0, PlayersPerTeam)
	for _, p := range m.Roster {
		if p.Team == team {
			ids = append(ids, p.Id)
		}
	}
	return ids
}

// PublicPlayers lists subscribed players in roster order with their current roles.
func (m *Match) PublicPlayers() []PlayerDTO {
	players := make([]PlayerDTO, 0, len(m.Roster))
	for _, entry := range m.Roster {
		if p, ok := m.Players[entry.Id]; ok {
			players = append(players, p.ToPublicPlayer())
		}
	}
	return players
}

// CurrentWord returns the team's active secret word, or false when the team has
// exhausted its list.
func (m *Match) CurrentWord(team Team) (SecretWord, bool) {
	ts := m.Teams[team]
	if ts == nil || ts.WordIndex >= len(ts.Words) {
		return SecretWord{}, false
	}
	return ts.Words[ts.WordIndex], true
}

func (m *Match) Score(team Team) int {
	if team == TeamRed {
		return m.RedScore
	}
	return m.BlueScore
}

func (m *Match) AddScore(team Team, delta int) int {
	if team == TeamRed {
		m.RedScore = max(m.RedScore+delta, 0)
		return m.RedScore
	}
	m.BlueScore = max(m.BlueScore+delta, 0)
	return m.BlueScore
}

// ResetTeams drops word lists, cursors, histories and pass flags.
func (m *Match) ResetTeams() {
	m.Teams = newTeams()
}

func (m *Match) ResetVotes() {
	m.ReceivedVotes = make([]TeamVotes, 0)
	m.VotedPlayerIDs = make(map[string]bool)
	m.EligibleVoters = make(map[string]bool)
}

// StopTimers cancels both phase timers.
func (m *Match) StopTimers() {
	if m.RoundTimer != nil && m.RoundTimer.Cancel != nil {
		m.RoundTimer.Cancel()
	}
	if m.ValidationTimer != nil && m.ValidationTimer.Cancel != nil {
		m.ValidationTimer.Cancel()
	}
	m.RoundTimer = nil
	m.ValidationTimer = nil
}

// Finish marks the match finished and disposes its timers. It reports false
// when the match was already finished.
func (m *Match) Finish() bool {
	if m.Status == StatusFinished {
		return false
	}
	m.Status = StatusFinished
	m.StopTimers()
	return true
}

// Winner returns the leading team, or nil on a tie.
func (m *Match) Winner() *Team {
	var winner Team
	switch {
	case m.RedScore > m.BlueScore:
		winner = TeamRed
	case m.BlueScore > m.RedScore:
		winner = TeamBlue
	default:
		return nil
	}
	return &winner
}

func (m *Match) Snapshot() MatchSnapshot {
	roster := make([]PlayerDTO, len(m.Roster))
	copy(roster, m.Roster)
	joined := make(map[string]time.Time, len(m.Players))
	for i, entry := range roster {
		if p, ok := m.Players[entry.Id]; ok {
			roster[i] = p.ToPublicPlayer()
			joined[p.Id] = p.JoinedAt
		}
	}
	return MatchSnapshot{
		Code:         m.Code,
		Status:       m.Status,
		CurrentRound: m.CurrentRound,
		RedScore:     m.RedScore,
		BlueScore:    m.BlueScore,
		Roster:       roster,
		Subscribed:   len(m.Players),
		CreatedAt:    m.CreatedAt,
		JoinedAt:     joined,
	}
}

// WordFor builds the word payload for a role. Guessers only see descriptions.
func WordFor(word SecretWord, role Role) SecretWordData {
	data := SecretWordData{
		DescriptionES: word.DescriptionES,
		DescriptionEN: word.DescriptionEN,
	}
	if role == RoleClueGiver {
		data.WordES = word.WordES
		data.WordEN = word.WordEN
		return data
	}
	data.IsRedacted = true
	return data
}

// RoundCompleteWord is the sentinel sent when a team runs out of words.
func RoundCompleteWord() SecretWordData {
	return SecretWordData{RoundComplete: true}
}
