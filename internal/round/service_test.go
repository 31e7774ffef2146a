package round

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/toohak/trivia-backend/internal/event"
	"github.com/toohak/trivia-backend/internal/game"
	"github.com/toohak/trivia-backend/internal/httperror"
)

type notification struct {
	Token     string
	EventType string
	Data      any
}

type fakeNotifier struct {
	sent []notification
}

func (f *fakeNotifier) Notify(token string, eventType string, data any) {
	f.sent = append(f.sent, notification{Token: token, EventType: eventType, Data: data})
}

func newTestService() (*Service, *MemoryStore, *fakeNotifier) {
	store := NewMemoryStore()
	notifier := &fakeNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, notifier, logger), store, notifier
}

func rosterGame(tokens ...string) *game.Game {
	g := &game.Game{ID: "g1", AdminToken: "admin-token"}
	for _, token := range tokens {
		g.Players = append(g.Players, game.Player{Username: "user-" + token, Token: token})
	}
	return g
}

func questionParams() QuestionParams {
	return QuestionParams{
		Question:      "What is the capital of France?",
		Answers:       []string{"Paris", "London"},
		TimeInSeconds: 10,
	}
}

func TestCreateRoundAssignsContiguousIndices(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	g := rosterGame("p1")

	_, err := svc.CreateRound(ctx, g, questionParams())
	require.NoError(t, err)

	first, err := store.LastRound(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, 1, first.RoundIndex)
	require.Equal(t, 11, first.TimeInSeconds, "requested duration plus delay compensation")
	require.False(t, first.IsFinished)

	_, err = svc.FinishRound(ctx, "g1", 0)
	require.NoError(t, err)

	_, err = svc.CreateRound(ctx, g, questionParams())
	require.NoError(t, err)

	second, err := store.LastRound(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, 2, second.RoundIndex)
}

func TestCreateRoundRejectsWhileRoundOpen(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	g := rosterGame("p1")

	_, err := svc.CreateRound(ctx, g, questionParams())
	require.NoError(t, err)

	_, err = svc.CreateRound(ctx, g, questionParams())
	require.Error(t, err)
	var httpErr *httperror.Error
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, 403, httpErr.Status)
	require.Equal(t, "Previous round is not finished", httpErr.Message)
}

func TestCreateRoundNotifiesRoster(t *testing.T) {
	svc, _, notifier := newTestService()
	g := rosterGame("p1", "p2")

	finishWhen, err := svc.CreateRound(context.Background(), g, questionParams())
	require.NoError(t, err)

	require.Len(t, notifier.sent, 2)
	tokens := []string{notifier.sent[0].Token, notifier.sent[1].Token}
	require.ElementsMatch(t, []string{"p1", "p2"}, tokens)
	for _, sent := range notifier.sent {
		require.Equal(t, string(event.QuestionSent), sent.EventType)
		data, ok := sent.Data.(event.QuestionSentData)
		require.True(t, ok)
		require.Equal(t, "What is the capital of France?", data.Question)
		require.Equal(t, finishWhen, data.FinishWhen)
	}
}

func TestRecordAnswerGuards(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	g := rosterGame("p1")
	now := time.Now()

	err := svc.RecordAnswer(ctx, g, "p1", 0, false, now)
	requireHTTPError(t, err, 403, "Game not started")

	_, err = svc.CreateRound(ctx, g, questionParams())
	require.NoError(t, err)

	err = svc.RecordAnswer(ctx, g, "stranger", 0, false, now)
	requireHTTPError(t, err, 403, "Player not found")

	require.NoError(t, svc.RecordAnswer(ctx, g, "p1", 0, false, now))

	err = svc.RecordAnswer(ctx, g, "p1", 1, true, now.Add(time.Second))
	requireHTTPError(t, err, 403, "Already answered")

	_, err = svc.FinishRound(ctx, "g1", 0)
	require.NoError(t, err)

	err = svc.RecordAnswer(ctx, g, "p1", 0, false, now)
	requireHTTPError(t, err, 403, "Round finished")
}

func TestRecordAnswerFirstWriteWins(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	g := rosterGame("p1")
	now := time.Now()

	_, err := svc.CreateRound(ctx, g, questionParams())
	require.NoError(t, err)

	require.NoError(t, svc.RecordAnswer(ctx, g, "p1", 2, false, now))
	require.Error(t, svc.RecordAnswer(ctx, g, "p1", 3, true, now.Add(time.Second)))

	stored, err := store.Answer(ctx, "g1", 1, "p1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, 2, stored.AnswerIndex)
	require.False(t, stored.WasHintUsed)
}

func TestFinishRoundSingleUse(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	g := rosterGame("p1")

	_, err := svc.FinishRound(ctx, "g1", 0)
	requireHTTPError(t, err, 404, "Round not found")

	_, err = svc.CreateRound(ctx, g, questionParams())
	require.NoError(t, err)

	rnd, err := svc.FinishRound(ctx, "g1", 2)
	require.NoError(t, err)
	require.Equal(t, 1, rnd.RoundIndex)

	stored, err := store.LastRound(ctx, "g1")
	require.NoError(t, err)
	require.True(t, stored.IsFinished)
	require.Equal(t, 2, *stored.CorrectAnswerIndex)

	_, err = svc.FinishRound(ctx, "g1", 2)
	requireHTTPError(t, err, 403, "Round already finished")
}

func requireHTTPError(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	var httpErr *httperror.Error
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, status, httpErr.Status)
	require.Equal(t, message, httpErr.Message)
}
