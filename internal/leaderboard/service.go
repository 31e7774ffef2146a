package leaderboard

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Service keeps cumulative per-game scores in a sorted set so clients
// can re-query standings between pushes.
type Service struct {
	rdb *redis.Client
}

func NewService(rdb *redis.Client) *Service {
	return &Service{rdb: rdb}
}

type Entry struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Points   int    `json:"points"`
	Position int    `json:"position"`
}

func scoresKey(gameID string) string {
	return "trivia:" + gameID + ":leaderboard"
}

func (s *Service) SetScore(ctx context.Context, gameID, token string, points int) error {
	err := s.rdb.ZAdd(ctx, scoresKey(gameID), redis.Z{
		Score:  float64(points),
		Member: token,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to store score: %w", err)
	}
	return nil
}

func (s *Service) RemoveScore(ctx context.Context, gameID, token string) error {
	if err := s.rdb.ZRem(ctx, scoresKey(gameID), token).Err(); err != nil {
		return fmt.Errorf("failed to remove score: %w", err)
	}
	return nil
}

// Scores returns tokens with cumulative points, highest first.
func (s *Service) Scores(ctx context.Context, gameID string) ([]Entry, error) {
	scores, err := s.rdb.ZRevRangeWithScores(ctx, scoresKey(gameID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}

	entries := make([]Entry, 0, len(scores))
	for i, score := range scores {
		token, ok := score.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			Token:    token,
			Points:   int(score.Score),
			Position: i + 1,
		})
	}
	return entries, nil
}
