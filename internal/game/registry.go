package game

import (
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/scythe504/taboo-backend/internal"
	"github.com/scythe504/taboo-backend/internal/config"
	"github.com/scythe504/taboo-backend/internal/ports"
)

var (
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchAlreadyStarted  = errors.New("match already started")
	ErrPlayerNotAuthorized  = errors.New("player is not part of this match")
	ErrPlayerAlreadyInMatch = errors.New("player already subscribed to this match")
	ErrInvalidRoster        = errors.New("invalid roster")
	ErrNotEnoughWords       = errors.New("not enough secret words available")
)

// Engine owns every live match and the collaborators they share.
type Engine struct {
	cfg     config.Game
	words   ports.WordSource
	results ports.ResultStore

	matchesMu sync.RWMutex
	matches   map[string]*internal.Match
}

// NewEngine creates an engine. results may be nil, in which case finished
// matches are not persisted.
func NewEngine(cfg config.Game, words ports.WordSource, results ports.ResultStore) *Engine {
	return &Engine{
		cfg:     cfg,
		words:   words,
		results: results,
		matches: make(map[string]*internal.Match),
	}
}

// =============================================================================
// MATCH REGISTRY
// =============================================================================

// ValidateRoster checks that roster is a complete two-team line-up: the
// configured number of distinct players, two per team, one clue giver and one
// guesser on each side.
func ValidateRoster(roster []internal.PlayerDTO, maxPlayers int) error {
	if len(roster) != maxPlayers {
		return fmt.Errorf("%w: need %d players, got %d", ErrInvalidRoster, maxPlayers, len(roster))
	}

	seen := make(map[string]bool, len(roster))
	roles := make(map[internal.Team]map[internal.Role]int, 2)
	for _, p := range roster {
		if p.Id == "" {
			return fmt.Errorf("%w: player without id", ErrInvalidRoster)
		}
		if seen[p.Id] {
			return fmt.Errorf("%w: duplicate player %s", ErrInvalidRoster, p.Id)
		}
		seen[p.Id] = true

		if !p.Team.Valid() {
			return fmt.Errorf("%w: player %s has unknown team %q", ErrInvalidRoster, p.Id, p.Team)
		}
		if p.Role != internal.RoleClueGiver && p.Role != internal.RoleGuesser {
			return fmt.Errorf("%w: player %s has unknown role %q", ErrInvalidRoster, p.Id, p.Role)
		}
		if roles[p.Team] == nil {
			roles[p.Team] = make(map[internal.Role]int, 2)
		}
		roles[p.Team][p.Role]++
	}

	for _, team := range []internal.Team{internal.TeamRed, internal.TeamBlue} {
		if roles[team][internal.RoleClueGiver] != 1 || roles[team][internal.RoleGuesser] != 1 {
			return fmt.Errorf("%w: team %s needs one clue giver and one guesser", ErrInvalidRoster, team)
		}
	}
	return nil
}

// CreateMatch registers a match for roster under code. It returns false if the
// roster is invalid or code already names a live match.
func (e *Engine) CreateMatch(code string, roster []internal.PlayerDTO) bool {
	logger := log.WithField("match", code)

	if code == "" {
		logger.Warn("[CreateMatch] Empty match code")
		return false
	}
	if err := ValidateRoster(roster, e.cfg.MaxPlayers); err != nil {
		logger.Warnf("[CreateMatch] Rejected roster: %v", err)
		return false
	}

	e.matchesMu.Lock()
	defer e.matchesMu.Unlock()

	if _, exists := e.matches[code]; exists {
		logger.Warn("[CreateMatch] Match code already in use")
		return false
	}
	e.matches[code] = internal.NewMatch(code, roster)

	logger.Infof("[CreateMatch] Created match with %d expected players", len(roster))
	return true
}

// GetMatch returns the live match for code, or nil.
func (e *Engine) GetMatch(code string) *internal.Match {
	e.matchesMu.RLock()
	defer e.matchesMu.RUnlock()
	return e.matches[code]
}

func (e *Engine) Snapshot(code string) (internal.MatchSnapshot, bool) {
	match := e.GetMatch(code)
	if match == nil {
		return internal.MatchSnapshot{}, false
	}
	match.Mu.Lock()
	defer match.Mu.Unlock()
	return match.Snapshot(), true
}

func (e *Engine) MatchCount() int {
	e.matchesMu.RLock()
	defer e.matchesMu.RUnlock()
	return len(e.matches)
}

// removeMatch drops match from the registry if it is still the entry for its code.
func (e *Engine) removeMatch(match *internal.Match) {
	e.matchesMu.Lock()
	defer e.matchesMu.Unlock()

	if current, exists := e.matches[match.Code]; exists && current == match {
		delete(e.matches, match.Code)
		log.WithField("match", match.Code).Info("[removeMatch] Match removed from registry")
	}
}

// Shutdown cancels every live match.
func (e *Engine) Shutdown() {
	e.matchesMu.RLock()
	live := make([]*internal.Match, 0, len(e.matches))
	for _, match := range e.matches {
		live = append(live, match)
	}
	e.matchesMu.RUnlock()

	log.Infof("[Shutdown] Cancelling %d live matches", len(live))
	for _, match := range live {
		e.cancelMatch(match, "server is shutting down")
	}
}
