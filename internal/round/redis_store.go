package round

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps rounds and answers in redis. Write-once answer
// semantics and single-use round finalization both ride on HSetNX: the
// first committed write for a key wins, later writers observe the
// refusal.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func roundsKey(gameID string) string {
	return "trivia:" + gameID + ":rounds"
}

func finishedKey(gameID string) string {
	return "trivia:" + gameID + ":finished"
}

func answersKey(gameID string, roundIndex int) string {
	return fmt.Sprintf("trivia:%s:round:%d:answers", gameID, roundIndex)
}

func answerOrderKey(gameID string, roundIndex int) string {
	return fmt.Sprintf("trivia:%s:round:%d:answer_order", gameID, roundIndex)
}

func (s *RedisStore) CreateRound(ctx context.Context, round Round) error {
	payload, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("failed to marshal round: %w", err)
	}
	field := strconv.Itoa(round.RoundIndex)
	if err := s.rdb.HSet(ctx, roundsKey(round.GameID), field, payload).Err(); err != nil {
		return fmt.Errorf("failed to store round: %w", err)
	}
	return nil
}

func (s *RedisStore) LastRound(ctx context.Context, gameID string) (*Round, error) {
	rounds, err := s.RoundsForGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if len(rounds) == 0 {
		return nil, nil
	}
	last := rounds[len(rounds)-1]
	return &last, nil
}

func (s *RedisStore) RoundsForGame(ctx context.Context, gameID string) ([]Round, error) {
	raw, err := s.rdb.HGetAll(ctx, roundsKey(gameID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load rounds: %w", err)
	}

	finished, err := s.rdb.HGetAll(ctx, finishedKey(gameID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load finish markers: %w", err)
	}

	rounds := make([]Round, 0, len(raw))
	for field, payload := range raw {
		var round Round
		if err := json.Unmarshal([]byte(payload), &round); err != nil {
			return nil, fmt.Errorf("failed to unmarshal round %s: %w", field, err)
		}
		if marker, ok := finished[field]; ok {
			correct, err := strconv.Atoi(marker)
			if err != nil {
				return nil, fmt.Errorf("bad finish marker for round %s: %w", field, err)
			}
			round.IsFinished = true
			round.CorrectAnswerIndex = &correct
		}
		rounds = append(rounds, round)
	}

	sort.Slice(rounds, func(i, j int) bool {
		return rounds[i].RoundIndex < rounds[j].RoundIndex
	})
	return rounds, nil
}

func (s *RedisStore) CreateAnswer(ctx context.Context, answer Answer) error {
	payload, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}

	key := answersKey(answer.GameID, answer.ForRoundIndex)
	stored, err := s.rdb.HSetNX(ctx, key, answer.PlayerToken, payload).Result()
	if err != nil {
		return fmt.Errorf("failed to store answer: %w", err)
	}
	if !stored {
		return ErrAlreadyAnswered
	}

	if err := s.rdb.RPush(ctx, answerOrderKey(answer.GameID, answer.ForRoundIndex), payload).Err(); err != nil {
		// Roll back the write-once marker so the player can retry.
		s.rdb.HDel(ctx, key, answer.PlayerToken)
		return fmt.Errorf("failed to store answer order: %w", err)
	}
	return nil
}

func (s *RedisStore) Answer(ctx context.Context, gameID string, roundIndex int, playerToken string) (*Answer, error) {
	payload, err := s.rdb.HGet(ctx, answersKey(gameID, roundIndex), playerToken).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load answer: %w", err)
	}

	var answer Answer
	if err := json.Unmarshal([]byte(payload), &answer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answer: %w", err)
	}
	return &answer, nil
}

func (s *RedisStore) RoundAnswers(ctx context.Context, gameID string, roundIndex int) ([]Answer, error) {
	payloads, err := s.rdb.LRange(ctx, answerOrderKey(gameID, roundIndex), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load round answers: %w", err)
	}

	answers := make([]Answer, 0, len(payloads))
	for _, payload := range payloads {
		var answer Answer
		if err := json.Unmarshal([]byte(payload), &answer); err != nil {
			return nil, fmt.Errorf("failed to unmarshal answer: %w", err)
		}
		answers = append(answers, answer)
	}
	return answers, nil
}

func (s *RedisStore) AnswersForPlayer(ctx context.Context, gameID, playerToken string) ([]Answer, error) {
	rounds, err := s.RoundsForGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	answers := []Answer{}
	for _, round := range rounds {
		answer, err := s.Answer(ctx, gameID, round.RoundIndex, playerToken)
		if err != nil {
			return nil, err
		}
		if answer != nil {
			answers = append(answers, *answer)
		}
	}
	return answers, nil
}

func (s *RedisStore) FinishRound(ctx context.Context, gameID string, roundIndex, correctAnswerIndex int) error {
	field := strconv.Itoa(roundIndex)

	exists, err := s.rdb.HExists(ctx, roundsKey(gameID), field).Result()
	if err != nil {
		return fmt.Errorf("failed to check round: %w", err)
	}
	if !exists {
		return ErrRoundNotFound
	}

	stored, err := s.rdb.HSetNX(ctx, finishedKey(gameID), field, strconv.Itoa(correctAnswerIndex)).Result()
	if err != nil {
		return fmt.Errorf("failed to finish round: %w", err)
	}
	if !stored {
		return ErrRoundFinished
	}
	return nil
}
