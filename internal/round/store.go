package round

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyAnswered means an answer for the same (round, player)
	// key was committed first. The stored answer is never overwritten.
	ErrAlreadyAnswered = errors.New("answer already recorded")

	// ErrRoundFinished means the round was already finalized; finishing
	// is single-use.
	ErrRoundFinished = errors.New("round already finished")

	ErrRoundNotFound = errors.New("round not found")
)

// Store is the durable per-game round and answer state. RoundAnswers
// returns answers in submission order; that order is the tie-break for
// equal round scores.
type Store interface {
	CreateRound(ctx context.Context, round Round) error
	LastRound(ctx context.Context, gameID string) (*Round, error)
	RoundsForGame(ctx context.Context, gameID string) ([]Round, error)

	// CreateAnswer commits an answer, first write wins.
	CreateAnswer(ctx context.Context, answer Answer) error
	Answer(ctx context.Context, gameID string, roundIndex int, playerToken string) (*Answer, error)
	RoundAnswers(ctx context.Context, gameID string, roundIndex int) ([]Answer, error)
	AnswersForPlayer(ctx context.Context, gameID, playerToken string) ([]Answer, error)

	// FinishRound flips the round to finished and locks in the correct
	// answer index. Exactly one caller succeeds.
	FinishRound(ctx context.Context, gameID string, roundIndex, correctAnswerIndex int) error
}
