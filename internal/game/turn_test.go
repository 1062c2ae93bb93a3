package game

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/taboo-backend/internal"
	"github.com/scythe504/taboo-backend/internal/config"
)

func TestClueGoesToPartnerOnly(t *testing.T) {
	h := startedHarness(t, nil)
	h.resetAll()

	h.engine.SubmitClue(testCode, "r1", "  first of the alphabet  ")

	clue := lastOf[internal.ClueReceivedData](t, h.rec["r2"], internal.MsgClueReceived)
	assert.Equal(t, "first of the alphabet", clue.Text)
	for _, id := range []string{"r1", "b1", "b2"} {
		assert.Empty(t, h.rec[id].types(), id)
	}

	h.match.Mu.Lock()
	defer h.match.Mu.Unlock()
	history := h.match.Teams[internal.TeamRed].History
	require.Len(t, history, 1)
	assert.Equal(t, 1, history[0].TurnID)
	assert.Equal(t, "alpha", history[0].Word.WordEN)
	assert.False(t, history[0].Passed)
}

func TestClueIgnoredOutOfTurn(t *testing.T) {
	h := startedHarness(t, nil)
	h.resetAll()

	h.engine.SubmitClue(testCode, "r2", "guessers cannot give clues")
	h.engine.SubmitClue(testCode, "r1", "   ")
	h.engine.SubmitClue(testCode, "ghost", "not in the match")
	h.engine.SubmitClue("NOPE", "r1", "no such match")

	for id, r := range h.rec {
		assert.Empty(t, r.types(), id)
	}
	h.match.Mu.Lock()
	assert.Empty(t, h.match.Teams[internal.TeamRed].History)
	h.match.Mu.Unlock()
}

func TestCorrectGuessScoresAndAdvances(t *testing.T) {
	h := startedHarness(t, nil)
	h.engine.SubmitClue(testCode, "r1", "first letter")
	h.resetAll()

	h.engine.SubmitGuess(testCode, "r2", "ALPHA")

	red, blue := h.scores()
	assert.Equal(t, 1, red)
	assert.Zero(t, blue)

	for id, r := range h.rec {
		result := lastOf[internal.GuessResultData](t, r, internal.MsgGuessResult)
		assert.True(t, result.IsCorrect, id)
		assert.Equal(t, internal.TeamRed, result.Team, id)
		assert.Equal(t, 1, result.NewScore, id)
	}

	next := lastOf[internal.SecretWordData](t, h.rec["r1"], internal.MsgNewSecretWord)
	assert.Equal(t, "bravo", next.WordEN)
	redacted := lastOf[internal.SecretWordData](t, h.rec["r2"], internal.MsgNewSecretWord)
	assert.True(t, redacted.IsRedacted)
	assert.Equal(t, "second letter", redacted.DescriptionEN)

	assert.Zero(t, h.rec["b1"].count(internal.MsgNewSecretWord), "blue keeps its word")
	h.match.Mu.Lock()
	assert.Zero(t, h.match.Teams[internal.TeamBlue].WordIndex)
	assert.Equal(t, 1, h.match.Teams[internal.TeamRed].WordIndex)
	h.match.Mu.Unlock()
}

func TestGuessMatchesEitherLanguage(t *testing.T) {
	h := startedHarness(t, nil)

	h.engine.SubmitGuess(testCode, "b2", "Alfa")
	h.engine.SubmitGuess(testCode, "b2", " bravo ")
	h.engine.SubmitGuess(testCode, "b2", "CARLOS")

	_, blue := h.scores()
	assert.Equal(t, 3, blue)
}

func TestIncorrectGuessStaysWithTeam(t *testing.T) {
	h := startedHarness(t, nil)
	h.resetAll()

	h.engine.SubmitGuess(testCode, "r2", "zulu")

	for _, id := range []string{"r1", "r2"} {
		result := lastOf[internal.GuessResultData](t, h.rec[id], internal.MsgGuessResult)
		assert.False(t, result.IsCorrect)
		assert.Equal(t, "zulu", result.Guess)
		assert.Zero(t, result.NewScore)
	}
	assert.Empty(t, h.rec["b1"].types())
	assert.Empty(t, h.rec["b2"].types())

	red, _ := h.scores()
	assert.Zero(t, red)
}

func TestGuessIgnoredFromClueGiver(t *testing.T) {
	h := startedHarness(t, nil)
	h.resetAll()

	h.engine.SubmitGuess(testCode, "r1", "alpha")
	h.engine.SubmitGuess(testCode, "r2", "")

	red, _ := h.scores()
	assert.Zero(t, red)
	for id, r := range h.rec {
		assert.Empty(t, r.types(), id)
	}
}

func TestSimultaneousCorrectGuessesScoreOnce(t *testing.T) {
	h := startedHarness(t, nil)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.engine.SubmitGuess(testCode, "r2", "alpha")
		}()
	}
	wg.Wait()

	red, _ := h.scores()
	assert.Equal(t, 1, red, "only the first guess sees alpha")
}

func TestPassTurn(t *testing.T) {
	h := startedHarness(t, nil)
	h.resetAll()

	h.engine.PassTurn(testCode, "r1")

	passed := lastOf[internal.PartnerPassedData](t, h.rec["r2"], internal.MsgPartnerPassed)
	assert.Equal(t, "r1", passed.PlayerID)
	assert.Equal(t, "bravo", lastOf[internal.SecretWordData](t, h.rec["r1"], internal.MsgNewSecretWord).WordEN)
	assert.True(t, lastOf[internal.SecretWordData](t, h.rec["r2"], internal.MsgNewSecretWord).IsRedacted)
	assert.Empty(t, h.rec["b1"].types())

	h.engine.PassTurn(testCode, "r1")

	h.match.Mu.Lock()
	defer h.match.Mu.Unlock()
	state := h.match.Teams[internal.TeamRed]
	assert.Equal(t, 1, state.WordIndex, "second pass in a round is ignored")
	assert.True(t, state.PassedThisRound)
	require.Len(t, state.History, 1)
	assert.True(t, state.History[0].Passed)
	assert.Equal(t, "alpha", state.History[0].Word.WordEN)
}

func TestPassIgnoredFromGuesser(t *testing.T) {
	h := startedHarness(t, nil)
	h.resetAll()

	h.engine.PassTurn(testCode, "b2")

	assert.Empty(t, h.rec["b1"].types())
	h.match.Mu.Lock()
	assert.False(t, h.match.Teams[internal.TeamBlue].PassedThisRound)
	h.match.Mu.Unlock()
}

func TestExhaustedWordsSendRoundComplete(t *testing.T) {
	h := startedHarness(t, func(g *config.Game) { g.WordsPerRound = 2 })

	h.engine.SubmitGuess(testCode, "r2", "alpha")
	h.engine.SubmitGuess(testCode, "r2", "bravo")

	for _, id := range []string{"r1", "r2"} {
		word := lastOf[internal.SecretWordData](t, h.rec[id], internal.MsgNewSecretWord)
		assert.True(t, word.RoundComplete, id)
		assert.Empty(t, word.WordEN, id)
	}

	h.rec["r2"].reset()
	h.engine.SubmitGuess(testCode, "r2", "charlie")
	h.engine.SubmitClue(testCode, "r1", "nothing left")
	h.engine.PassTurn(testCode, "r1")

	red, _ := h.scores()
	assert.Equal(t, 2, red)
	assert.Empty(t, h.rec["r2"].types())
	assert.Equal(t, internal.StatusInProgress, h.status(), "the round runs until its timer expires")
}
