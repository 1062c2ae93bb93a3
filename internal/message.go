package internal

type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Outbound message types.
const (
	MsgMatchInitialized     = "match_initialized"
	MsgRoundStarted         = "round_started"
	MsgRoundTimerTick       = "round_timer_tick"
	MsgNewSecretWord        = "new_secret_word"
	MsgClueReceived         = "clue_received"
	MsgGuessResult          = "guess_result"
	MsgPartnerPassed        = "partner_passed"
	MsgBeginRoundValidation = "begin_round_validation"
	MsgValidationTimerTick  = "validation_timer_tick"
	MsgValidationComplete   = "validation_complete"
	MsgSuddenDeathStarted   = "sudden_death_started"
	MsgMatchOver            = "match_over"
	MsgMatchCancelled       = "match_cancelled"
	MsgError                = "error"
)

// Inbound message types.
const (
	MsgSubmitClue  = "submit_clue"
	MsgSubmitGuess = "submit_guess"
	MsgPassTurn    = "pass_turn"
	MsgSubmitVotes = "submit_votes"
)

type MatchInitializedData struct {
	MatchCode string      `json:"match_code"`
	Players   []PlayerDTO `json:"players"`
}

type RoundStartedData struct {
	RoundNumber int         `json:"round_number"`
	TotalRounds int         `json:"total_rounds"`
	Players     []PlayerDTO `json:"players"`
}

type TimerTickData struct {
	SecondsLeft int `json:"seconds_left"`
}

// SecretWordData carries a word to one player. Guessers get the word fields
// blanked.
type SecretWordData struct {
	WordES        string `json:"word_es"`
	WordEN        string `json:"word_en"`
	DescriptionES string `json:"description_es"`
	DescriptionEN string `json:"description_en"`
	IsRedacted    bool   `json:"is_redacted"`
	RoundComplete bool   `json:"round_complete"`
}

type ClueReceivedData struct {
	Text string `json:"text"`
}

type GuessResultData struct {
	IsCorrect bool   `json:"is_correct"`
	Team      Team   `json:"team"`
	NewScore  int    `json:"new_score"`
	Guess     string `json:"guess,omitempty"`
}

type PartnerPassedData struct {
	PlayerID string `json:"player_id"`
}

type BeginValidationData struct {
	JudgedTeam  Team               `json:"judged_team"`
	TurnHistory []TurnHistoryEntry `json:"turn_history"`
}

type ValidationCompleteData struct {
	RedScore    int `json:"red_score"`
	BlueScore   int `json:"blue_score"`
	RedPenalty  int `json:"red_penalty"`
	BluePenalty int `json:"blue_penalty"`
}

type SuddenDeathStartedData struct {
	RedScore  int `json:"red_score"`
	BlueScore int `json:"blue_score"`
}

type MatchOverData struct {
	Winner    *Team `json:"winner"`
	RedScore  int   `json:"red_score"`
	BlueScore int   `json:"blue_score"`
}

type MatchCancelledData struct {
	Reason   string `json:"reason"`
	PlayerID string `json:"player_id,omitempty"`
}

type ErrorData struct {
	Message string `json:"message"`
}

type ClueRequest struct {
	Text string `json:"text"`
}

type GuessRequest struct {
	Text string `json:"text"`
}

type VotesRequest struct {
	Votes []ValidationVote `json:"votes"`
}
