package round

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store with the same write-once and
// single-use semantics as the redis store. Used by tests and local
// runs without redis.
type MemoryStore struct {
	mu      sync.Mutex
	rounds  map[string][]Round
	answers map[string]map[int][]Answer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rounds:  make(map[string][]Round),
		answers: make(map[string]map[int][]Answer),
	}
}

func (s *MemoryStore) CreateRound(ctx context.Context, round Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rounds[round.GameID] = append(s.rounds[round.GameID], round)
	return nil
}

func (s *MemoryStore) LastRound(ctx context.Context, gameID string) (*Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rounds := s.rounds[gameID]
	if len(rounds) == 0 {
		return nil, nil
	}
	last := rounds[len(rounds)-1]
	return &last, nil
}

func (s *MemoryStore) RoundsForGame(ctx context.Context, gameID string) ([]Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rounds := make([]Round, len(s.rounds[gameID]))
	copy(rounds, s.rounds[gameID])
	return rounds, nil
}

func (s *MemoryStore) CreateAnswer(ctx context.Context, answer Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byRound, ok := s.answers[answer.GameID]
	if !ok {
		byRound = make(map[int][]Answer)
		s.answers[answer.GameID] = byRound
	}

	for _, existing := range byRound[answer.ForRoundIndex] {
		if existing.PlayerToken == answer.PlayerToken {
			return ErrAlreadyAnswered
		}
	}

	byRound[answer.ForRoundIndex] = append(byRound[answer.ForRoundIndex], answer)
	return nil
}

func (s *MemoryStore) Answer(ctx context.Context, gameID string, roundIndex int, playerToken string) (*Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, answer := range s.answers[gameID][roundIndex] {
		if answer.PlayerToken == playerToken {
			found := answer
			return &found, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) RoundAnswers(ctx context.Context, gameID string, roundIndex int) ([]Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make([]Answer, len(s.answers[gameID][roundIndex]))
	copy(answers, s.answers[gameID][roundIndex])
	return answers, nil
}

func (s *MemoryStore) AnswersForPlayer(ctx context.Context, gameID, playerToken string) ([]Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := []Answer{}
	for _, round := range s.rounds[gameID] {
		for _, answer := range s.answers[gameID][round.RoundIndex] {
			if answer.PlayerToken == playerToken {
				answers = append(answers, answer)
			}
		}
	}
	return answers, nil
}

func (s *MemoryStore) FinishRound(ctx context.Context, gameID string, roundIndex, correctAnswerIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rounds := s.rounds[gameID]
	for i := range rounds {
		if rounds[i].RoundIndex != roundIndex {
			continue
		}
		if rounds[i].IsFinished {
			return ErrRoundFinished
		}
		correct := correctAnswerIndex
		rounds[i].IsFinished = true
		rounds[i].CorrectAnswerIndex = &correct
		return nil
	}
	return ErrRoundNotFound
}
