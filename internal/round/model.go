package round

import "time"

// Round is one timed question cycle. TimeInSeconds already includes
// the delay compensation added at creation. CorrectAnswerIndex is set
// only once the round is finished.
type Round struct {
	GameID             string    `json:"game_id"`
	RoundIndex         int       `json:"round_index"`
	StartedAt          time.Time `json:"started_at"`
	TimeInSeconds      int       `json:"time_in_seconds"`
	IsHardcore         bool      `json:"is_hardcore"`
	IsFinished         bool      `json:"is_finished"`
	CorrectAnswerIndex *int      `json:"correct_answer_index,omitempty"`
}

// Answer is keyed by (game, round index, player token) and written at
// most once. AnswerTime is the client-reported submission timestamp.
type Answer struct {
	GameID        string    `json:"game_id"`
	ForRoundIndex int       `json:"for_round_index"`
	PlayerToken   string    `json:"player_token"`
	WasHintUsed   bool      `json:"was_hint_used"`
	AnswerIndex   int       `json:"answer_index"`
	AnswerTime    time.Time `json:"answer_time"`
}
