package round

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAnswerWriteOnce(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	first := Answer{GameID: "g1", ForRoundIndex: 1, PlayerToken: "p1", AnswerIndex: 0, AnswerTime: now}
	require.NoError(t, store.CreateAnswer(ctx, first))

	second := Answer{GameID: "g1", ForRoundIndex: 1, PlayerToken: "p1", AnswerIndex: 3, AnswerTime: now.Add(time.Second)}
	require.ErrorIs(t, store.CreateAnswer(ctx, second), ErrAlreadyAnswered)

	stored, err := store.Answer(ctx, "g1", 1, "p1")
	require.NoError(t, err)
	require.Equal(t, 0, stored.AnswerIndex)

	// Same player, different round: a fresh key.
	other := Answer{GameID: "g1", ForRoundIndex: 2, PlayerToken: "p1", AnswerIndex: 1, AnswerTime: now}
	require.NoError(t, store.CreateAnswer(ctx, other))
}

func TestMemoryStoreRoundAnswersKeepSubmissionOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	for i, token := range []string{"c", "a", "b"} {
		require.NoError(t, store.CreateAnswer(ctx, Answer{
			GameID:        "g1",
			ForRoundIndex: 1,
			PlayerToken:   token,
			AnswerIndex:   i,
			AnswerTime:    now,
		}))
	}

	answers, err := store.RoundAnswers(ctx, "g1", 1)
	require.NoError(t, err)
	require.Len(t, answers, 3)
	require.Equal(t, "c", answers[0].PlayerToken)
	require.Equal(t, "a", answers[1].PlayerToken)
	require.Equal(t, "b", answers[2].PlayerToken)
}

func TestMemoryStoreFinishRoundCompareAndSwap(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.ErrorIs(t, store.FinishRound(ctx, "g1", 1, 0), ErrRoundNotFound)

	require.NoError(t, store.CreateRound(ctx, Round{GameID: "g1", RoundIndex: 1, StartedAt: time.Now(), TimeInSeconds: 11}))

	require.NoError(t, store.FinishRound(ctx, "g1", 1, 2))
	require.ErrorIs(t, store.FinishRound(ctx, "g1", 1, 3), ErrRoundFinished)

	rnd, err := store.LastRound(ctx, "g1")
	require.NoError(t, err)
	require.True(t, rnd.IsFinished)
	require.Equal(t, 2, *rnd.CorrectAnswerIndex, "the losing finish never overwrites the winner")
}

func TestMemoryStoreAnswersForPlayer(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.CreateRound(ctx, Round{GameID: "g1", RoundIndex: i, StartedAt: now, TimeInSeconds: 11}))
	}
	require.NoError(t, store.CreateAnswer(ctx, Answer{GameID: "g1", ForRoundIndex: 1, PlayerToken: "p1", AnswerTime: now}))
	require.NoError(t, store.CreateAnswer(ctx, Answer{GameID: "g1", ForRoundIndex: 2, PlayerToken: "p2", AnswerTime: now}))
	require.NoError(t, store.CreateAnswer(ctx, Answer{GameID: "g1", ForRoundIndex: 3, PlayerToken: "p1", AnswerTime: now}))

	answers, err := store.AnswersForPlayer(ctx, "g1", "p1")
	require.NoError(t, err)
	require.Len(t, answers, 2)
	require.Equal(t, 1, answers[0].ForRoundIndex)
	require.Equal(t, 3, answers[1].ForRoundIndex)
}
