package internal

import (
	"context"
	"sync"
	"time"
)

const (
	MaxPlayersPerMatch = 4
	PlayersPerTeam     = 2
)

type MatchStatus string

const (
	StatusWaitingForPlayers MatchStatus = "waiting_for_players"
	StatusInProgress        MatchStatus = "in_progress"
	StatusValidating        MatchStatus = "validating"
	StatusSuddenDeath       MatchStatus = "sudden_death"
	StatusFinished          MatchStatus = "finished"
)

type Team string

const (
	TeamRed  Team = "red"
	TeamBlue Team = "blue"
)

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == TeamRed {
		return TeamBlue
	}
	return TeamRed
}

func (t Team) Valid() bool {
	return t == TeamRed || t == TeamBlue
}

type Role string

const (
	RoleClueGiver Role = "clue_giver"
	RoleGuesser   Role = "guesser"
)

type TimerKind string

const (
	TimerRound       TimerKind = "round"
	TimerValidation  TimerKind = "validation"
	TimerSuddenDeath TimerKind = "sudden_death"
)

// SecretWord is a bilingual word with its hint description.
type SecretWord struct {
	WordES        string `json:"word_es"`
	WordEN        string `json:"word_en"`
	DescriptionES string `json:"description_es"`
	DescriptionEN string `json:"description_en"`
}

// TurnHistoryEntry is one attempt at a secret word: either a clue or a pass.
type TurnHistoryEntry struct {
	TurnID int        `json:"turn_id"`
	Word   SecretWord `json:"word"`
	Clue   string     `json:"clue,omitempty"`
	Passed bool       `json:"passed"`
}

// ValidationVote flags a single turn of the opposing team.
type ValidationVote struct {
	TurnID    int  `json:"turn_id"`
	MultiWord bool `json:"multi_word"`
	Synonym   bool `json:"synonym"`
}

// TeamVotes is the ballot of one voter, tagged with the voter's team.
type TeamVotes struct {
	VoterID    string           `json:"voter_id"`
	VotingTeam Team             `json:"voting_team"`
	Votes      []ValidationVote `json:"votes"`
}

// TeamState is a team's progress through the current round.
type TeamState struct {
	Words           []SecretWord       `json:"-"`
	WordIndex       int                `json:"word_index"`
	History         []TurnHistoryEntry `json:"history"`
	PassedThisRound bool               `json:"passed_this_round"`
}

type PhaseTimer struct {
	Kind      TimerKind     `json:"kind"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Context   context.Context
	Cancel    context.CancelFunc
}

type Match struct {
	Code string

	Status MatchStatus `json:"status"`
	Roster []PlayerDTO `json:"roster"`

	// Subscribed players keyed by id.
	Players map[string]*Player

	RedScore     int `json:"red_score"`
	BlueScore    int `json:"blue_score"`
	CurrentRound int `json:"current_round"`

	Teams map[Team]*TeamState

	// Validation
	ReceivedVotes  []TeamVotes
	VotedPlayerIDs map[string]bool
	EligibleVoters map[string]bool

	RoundTimer      *PhaseTimer
	ValidationTimer *PhaseTimer

	CreatedAt time.Time

	Mu sync.Mutex `json:"-"`
}

type MatchSnapshot struct {
	Code         string      `json:"code"`
	Status       MatchStatus `json:"status"`
	CurrentRound int         `json:"current_round"`
	RedScore     int         `json:"red_score"`
	BlueScore    int         `json:"blue_score"`
	Roster       []PlayerDTO `json:"roster"`
	Subscribed   int         `json:"subscribed"`
	CreatedAt    time.Time   `json:"created_at"`

	// JoinedAt maps subscribed player ids to their subscription time.
	JoinedAt map[string]time.Time `json:"joined_at"`
}

type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_time_start_ms"`
	RespEndTime   int64 `json:"resp_time_end_ms"`
	NetRespTime   int64 `json:"net_resp_time_ms"`
	Data          any   `json:"data"`
}
