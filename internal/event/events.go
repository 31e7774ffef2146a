package event

import "time"

type Type string

const (
	PlayerJoined  Type = "PLAYER_JOINED"
	QuestionSent  Type = "QUESTION_SENT"
	RoundFinished Type = "ROUND_FINISHED"
	GameOver      Type = "GAME_OVER"
)

// PlayerJoinedData is sent to the game admin when a player signs up.
type PlayerJoinedData struct {
	Username string `json:"username"`
}

// QuestionSentData is sent to every roster player when a round opens.
// FinishWhen is an absolute deadline so client clock skew does not
// shrink or stretch the answer window.
type QuestionSentData struct {
	Question   string    `json:"question"`
	IsDouble   bool      `json:"is_double"`
	Answers    []string  `json:"answers"`
	FinishWhen time.Time `json:"finish_when"`
	Hint       *string   `json:"hint"`
}

// RoundFinishedData is sent to each surviving player after a round is
// scored. WasAnswerCorrect is null when the player did not score this
// round, AnsweredNth is null when the player never answered.
type RoundFinishedData struct {
	WasAnswerCorrect   *bool `json:"was_answer_correct"`
	PointsForThisRound int   `json:"points_for_this_round"`
	TotalPoints        int   `json:"total_points"`
	CurrentPosition    int   `json:"current_position"`
	AnsweredNth        *int  `json:"answered_nth"`
}

// GameOverData is sent to eliminated players at round end and to every
// player at game end.
type GameOverData struct {
	DidPlayerLost              bool `json:"did_player_lost"`
	TotalPoints                int  `json:"total_points"`
	FinalPosition              int  `json:"final_position"`
	QuestionsAnswered          int  `json:"questions_answered"`
	QuestionsAnsweredCorrectly int  `json:"questions_answered_correctly"`
	AverageAnswerTime          int  `json:"average_answer_time"`
}
