package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scythe504/taboo-backend/internal"
	"github.com/scythe504/taboo-backend/internal/config"
	"github.com/scythe504/taboo-backend/internal/ports"
)

const testCode = "GAME01"

var testWords = []internal.SecretWord{
	{WordES: "alfa", WordEN: "alpha", DescriptionES: "primera letra", DescriptionEN: "first letter"},
	{WordES: "bravo", WordEN: "bravo", DescriptionES: "segunda letra", DescriptionEN: "second letter"},
	{WordES: "carlos", WordEN: "charlie", DescriptionES: "tercera letra", DescriptionEN: "third letter"},
	{WordES: "delta", WordEN: "delta", DescriptionES: "cuarta letra", DescriptionEN: "fourth letter"},
	{WordES: "eco", WordEN: "echo", DescriptionES: "quinta letra", DescriptionEN: "fifth letter"},
	{WordES: "fox", WordEN: "foxtrot", DescriptionES: "sexta letra", DescriptionEN: "sixth letter"},
}

// stubWords hands out the head of its list, so every team sees alpha first.
type stubWords struct {
	words []internal.SecretWord
	err   error
}

func (s stubWords) GetRandomWords(_ context.Context, count int) ([]internal.SecretWord, error) {
	if s.err != nil {
		return nil, s.err
	}
	n := min(count, len(s.words))
	return append([]internal.SecretWord(nil), s.words[:n]...), nil
}

type stubResults struct {
	mu      sync.Mutex
	saved   []ports.MatchResult
	awarded map[string]int
	err     error
}

func newStubResults() *stubResults {
	return &stubResults{awarded: make(map[string]int)}
}

func (s *stubResults) SaveMatchResult(_ context.Context, result ports.MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, result)
	return nil
}

func (s *stubResults) AwardPointsToWinners(_ context.Context, playerIDs []string, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, id := range playerIDs {
		s.awarded[id] += points
	}
	return nil
}

func (s *stubResults) snapshot() ([]ports.MatchResult, map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	awarded := make(map[string]int, len(s.awarded))
	for k, v := range s.awarded {
		awarded[k] = v
	}
	return append([]ports.MatchResult(nil), s.saved...), awarded
}

var errBrokenPipe = errors.New("broken pipe")

// recorder is a notifier that keeps every message and can be told to fail.
type recorder struct {
	mu   sync.Mutex
	msgs []internal.Message[any]
	fail bool
}

func (r *recorder) WriteJSON(v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errBrokenPipe
	}
	r.msgs = append(r.msgs, v.(internal.Message[any]))
	return nil
}

func (r *recorder) setFail(fail bool) {
	r.mu.Lock()
	r.fail = fail
	r.mu.Unlock()
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.msgs = nil
	r.mu.Unlock()
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.msgs))
	for _, m := range r.msgs {
		out = append(out, m.Type)
	}
	return out
}

func (r *recorder) count(msgType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if m.Type == msgType {
			n++
		}
	}
	return n
}

// lastOf returns the payload of the newest message of msgType.
func lastOf[T any](t *testing.T, r *recorder, msgType string) T {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.msgs) - 1; i >= 0; i-- {
		if r.msgs[i].Type == msgType {
			data, ok := r.msgs[i].Data.(T)
			require.True(t, ok, "payload of %s has type %T", msgType, r.msgs[i].Data)
			return data
		}
	}
	require.Failf(t, "message not received", "no %s message", msgType)
	var zero T
	return zero
}

// testConfig keeps every timer far away so tests drive expiries themselves.
func testConfig() config.Game {
	g := config.DefaultGame()
	g.RoundDuration = time.Hour
	g.ValidationDuration = time.Hour
	g.SuddenDeathDuration = time.Hour
	g.TickInterval = time.Hour
	return g
}

func testRoster() []internal.PlayerDTO {
	return []internal.PlayerDTO{
		{Id: "r1", Nickname: "RedClue", Team: internal.TeamRed, Role: internal.RoleClueGiver},
		{Id: "r2", Nickname: "RedGuess", Team: internal.TeamRed, Role: internal.RoleGuesser},
		{Id: "b1", Nickname: "BlueClue", Team: internal.TeamBlue, Role: internal.RoleClueGiver},
		{Id: "b2", Nickname: "BlueGuess", Team: internal.TeamBlue, Role: internal.RoleGuesser},
	}
}

type harness struct {
	t       *testing.T
	engine  *Engine
	match   *internal.Match
	results *stubResults
	rec     map[string]*recorder
}

// newHarness registers testCode without subscribing anybody.
func newHarness(t *testing.T, cfg config.Game, words ports.WordSource) *harness {
	t.Helper()

	results := newStubResults()
	engine := NewEngine(cfg, words, results)
	require.True(t, engine.CreateMatch(testCode, testRoster()))
	t.Cleanup(engine.Shutdown)

	h := &harness{
		t:       t,
		engine:  engine,
		match:   engine.GetMatch(testCode),
		results: results,
		rec:     make(map[string]*recorder),
	}
	for _, p := range testRoster() {
		h.rec[p.Id] = &recorder{}
	}
	return h
}

// startedHarness returns a match whose first round is running.
func startedHarness(t *testing.T, mutate func(*config.Game)) *harness {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	h := newHarness(t, cfg, stubWords{words: testWords})
	h.subscribeAll()
	require.Equal(t, internal.StatusInProgress, h.status())
	return h
}

func (h *harness) subscribeAll() {
	h.t.Helper()
	for _, p := range testRoster() {
		_, err := h.engine.Subscribe(testCode, p.Id, h.rec[p.Id])
		require.NoError(h.t, err)
	}
}

func (h *harness) resetAll() {
	for _, r := range h.rec {
		r.reset()
	}
}

func (h *harness) status() internal.MatchStatus {
	h.match.Mu.Lock()
	defer h.match.Mu.Unlock()
	return h.match.Status
}

func (h *harness) scores() (red, blue int) {
	h.match.Mu.Lock()
	defer h.match.Mu.Unlock()
	return h.match.RedScore, h.match.BlueScore
}

func (h *harness) role(playerID string) internal.Role {
	h.match.Mu.Lock()
	defer h.match.Mu.Unlock()
	return h.match.Players[playerID].Role
}

// expireRound runs the round timer's expiry as if its deadline had passed.
func (h *harness) expireRound() {
	h.t.Helper()
	h.match.Mu.Lock()
	timer := h.match.RoundTimer
	h.match.Mu.Unlock()
	require.NotNil(h.t, timer)
	h.engine.beginValidation(h.match, timer)
}

func (h *harness) expireValidation() {
	h.t.Helper()
	h.match.Mu.Lock()
	timer := h.match.ValidationTimer
	h.match.Mu.Unlock()
	require.NotNil(h.t, timer)
	h.engine.expireValidation(h.match, timer)
}

func (h *harness) expireSuddenDeath() {
	h.t.Helper()
	h.match.Mu.Lock()
	timer := h.match.RoundTimer
	h.match.Mu.Unlock()
	require.NotNil(h.t, timer)
	require.Equal(h.t, internal.TimerSuddenDeath, timer.Kind)
	h.engine.expireSuddenDeath(h.match, timer)
}
