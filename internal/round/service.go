package round

import (
	"context"
	"log/slog"
	"time"

	"github.com/toohak/trivia-backend/internal/event"
	"github.com/toohak/trivia-backend/internal/game"
	"github.com/toohak/trivia-backend/internal/httperror"
)

// DelayCompensation pads the question duration so the published
// deadline stays realistic despite network and server startup latency.
const DelayCompensation = 1 * time.Second

type Notifier interface {
	Notify(token string, eventType string, data any)
}

// Service owns the round state machine of each game:
// NoRound -> RoundOpen -> RoundFinished -> RoundOpen -> ...
type Service struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger
}

func NewService(store Store, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// QuestionParams describes the question an admin pushes to the roster.
type QuestionParams struct {
	Question      string
	Hint          *string
	IsDouble      bool
	Answers       []string
	TimeInSeconds int
	IsHardcore    bool
}

// CreateRound opens the next round and fans the question out to every
// roster player. It fails while the previous round is still open.
func (s *Service) CreateRound(ctx context.Context, g *game.Game, params QuestionParams) (time.Time, error) {
	lastRound, err := s.store.LastRound(ctx, g.ID)
	if err != nil {
		return time.Time{}, err
	}
	if lastRound != nil && !lastRound.IsFinished {
		return time.Time{}, httperror.Forbidden("Previous round is not finished")
	}

	lastRoundIndex := 0
	if lastRound != nil {
		lastRoundIndex = lastRound.RoundIndex
	}

	timeInSeconds := params.TimeInSeconds + int(DelayCompensation.Seconds())
	startedAt := time.Now()

	round := Round{
		GameID:        g.ID,
		RoundIndex:    lastRoundIndex + 1,
		StartedAt:     startedAt,
		TimeInSeconds: timeInSeconds,
		IsHardcore:    params.IsHardcore,
		IsFinished:    false,
	}
	if err := s.store.CreateRound(ctx, round); err != nil {
		return time.Time{}, err
	}

	finishWhen := startedAt.Add(time.Duration(timeInSeconds) * time.Second)
	s.logger.Info("round created", "game_id", g.ID, "round_index", round.RoundIndex, "finish_when", finishWhen)

	for _, player := range g.Players {
		s.notifier.Notify(player.Token, string(event.QuestionSent), event.QuestionSentData{
			Question:   params.Question,
			IsDouble:   params.IsDouble,
			Answers:    params.Answers,
			FinishWhen: finishWhen,
			Hint:       params.Hint,
		})
	}

	return finishWhen, nil
}

// RecordAnswer stores a player's answer for the open round. Answers
// are write-once; the first committed write for a (round, player) key
// wins.
func (s *Service) RecordAnswer(ctx context.Context, g *game.Game, playerToken string, answerIndex int, wasHintUsed bool, answerTime time.Time) error {
	round, err := s.store.LastRound(ctx, g.ID)
	if err != nil {
		return err
	}
	if round == nil {
		return httperror.Forbidden("Game not started")
	}
	if round.IsFinished {
		return httperror.Forbidden("Round finished")
	}

	player := g.PlayerByToken(playerToken)
	if player == nil {
		return httperror.Forbidden("Player not found")
	}

	err = s.store.CreateAnswer(ctx, Answer{
		GameID:        g.ID,
		ForRoundIndex: round.RoundIndex,
		PlayerToken:   player.Token,
		WasHintUsed:   wasHintUsed,
		AnswerIndex:   answerIndex,
		AnswerTime:    answerTime,
	})
	if err == ErrAlreadyAnswered {
		return httperror.Forbidden("Already answered")
	}
	if err != nil {
		return err
	}

	s.logger.Info("answer recorded", "game_id", g.ID, "round_index", round.RoundIndex)
	return nil
}

// FinishRound finalizes the latest round, locking in the correct
// answer index. Exactly one caller succeeds; the race with concurrent
// answers is closed by the store's compare-and-swap.
func (s *Service) FinishRound(ctx context.Context, gameID string, correctAnswerIndex int) (*Round, error) {
	round, err := s.store.LastRound(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, httperror.NotFound("Round not found")
	}
	if round.IsFinished {
		return nil, httperror.Forbidden("Round already finished")
	}

	err = s.store.FinishRound(ctx, gameID, round.RoundIndex, correctAnswerIndex)
	if err == ErrRoundFinished {
		return nil, httperror.Forbidden("Round already finished")
	}
	if err == ErrRoundNotFound {
		return nil, httperror.NotFound("Round not found")
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("round finished", "game_id", gameID, "round_index", round.RoundIndex, "correct_answer_index", correctAnswerIndex)
	return round, nil
}

// LastRound exposes the latest round for the end-of-game checks.
func (s *Service) LastRound(ctx context.Context, gameID string) (*Round, error) {
	return s.store.LastRound(ctx, gameID)
}
