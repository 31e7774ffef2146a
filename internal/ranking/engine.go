package ranking

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/toohak/trivia-backend/internal/game"
	"github.com/toohak/trivia-backend/internal/round"
)

// PlayerEndGameRanking is the final standing of a player who is done
// with the game, either eliminated mid-game or at game over.
type PlayerEndGameRanking struct {
	UserToken                  string
	DidPlayerLost              bool
	TotalPoints                int
	FinalPosition              int
	QuestionsAnswered          int
	QuestionsAnsweredCorrectly int
	AverageAnswerTime          int
}

// PlayerEndRoundRanking is a surviving player's standing after one
// round. WasAnswerCorrect is nil when the player did not score this
// round, AnsweredNth is nil when the player never answered.
type PlayerEndRoundRanking struct {
	UserToken          string
	WasAnswerCorrect   *bool
	PointsForThisRound int
	TotalPoints        int
	CurrentPosition    int
	AnsweredNth        *int
}

type Ranking struct {
	EndGame  []PlayerEndGameRanking
	EndRound []PlayerEndRoundRanking
}

// Engine computes rankings from stored answers. It never recomputes
// cumulative totals for the end-game path; those come from the
// caller-reported running ranking.
type Engine struct {
	store  round.Store
	logger *slog.Logger
}

func NewEngine(store round.Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger,
	}
}

type scoredAnswer struct {
	playerToken string
	points      int
}

type timedAnswer struct {
	playerToken     string
	answeredAfterMs int64
}

// CalculateRanking scores a finished round. In hardcore rounds an
// incorrect answer eliminates the player: their prior cumulative
// points become final and they land in EndGame instead of EndRound.
// Eliminated players' zero-point entries still occupy slots in the
// scored and answer-time orderings.
func (e *Engine) CalculateRanking(ctx context.Context, g *game.Game, rnd *round.Round, correctAnswerIndex, maxPoints int, currentPoints map[string]int) (Ranking, error) {
	answers, err := e.store.RoundAnswers(ctx, g.ID, rnd.RoundIndex)
	if err != nil {
		return Ranking{}, err
	}

	var roundPoints []scoredAnswer
	var answerTimes []timedAnswer
	ranking := Ranking{
		EndGame:  []PlayerEndGameRanking{},
		EndRound: []PlayerEndRoundRanking{},
	}

	for _, answer := range answers {
		if answer.AnswerIndex != correctAnswerIndex {
			if !rnd.IsHardcore {
				e.logger.Info("incorrect answer in non-hardcore round, skipping", "round_index", rnd.RoundIndex)
				continue
			}

			endGameRanking, err := e.CalculateEndGameRanking(ctx, EndGameParams{
				UserToken:     answer.PlayerToken,
				GameID:        g.ID,
				DidPlayerLost: true,
				FinalPosition: 0,
				TotalPoints:   currentPoints[answer.PlayerToken],
			})
			if err != nil {
				return Ranking{}, err
			}
			ranking.EndGame = append(ranking.EndGame, endGameRanking)

			e.logger.Info("hardcore elimination", "round_index", rnd.RoundIndex)
		}

		points, answeredAfterMs := pointsForRound(rnd, answer, correctAnswerIndex, maxPoints)
		roundPoints = append(roundPoints, scoredAnswer{playerToken: answer.PlayerToken, points: points})
		answerTimes = append(answerTimes, timedAnswer{playerToken: answer.PlayerToken, answeredAfterMs: answeredAfterMs})
	}

	// Ties keep submission order: stable sorts over the answer list.
	sort.SliceStable(roundPoints, func(i, j int) bool {
		return roundPoints[i].points > roundPoints[j].points
	})
	sort.SliceStable(answerTimes, func(i, j int) bool {
		return answerTimes[i].answeredAfterMs < answerTimes[j].answeredAfterMs
	})

	for _, player := range g.Players {
		token := player.Token
		eliminated := lo.ContainsBy(ranking.EndGame, func(r PlayerEndGameRanking) bool {
			return r.UserToken == token
		})
		if eliminated {
			continue
		}

		playerPoints := currentPoints[token]
		scored, scoredIndex, hasScore := lo.FindIndexOf(roundPoints, func(s scoredAnswer) bool {
			return s.playerToken == token
		})
		_, timeIndex, answered := lo.FindIndexOf(answerTimes, func(t timedAnswer) bool {
			return t.playerToken == token
		})

		pointsForThisRound := 0
		var wasAnswerCorrect *bool
		if hasScore {
			pointsForThisRound = scored.points
			correct := true
			wasAnswerCorrect = &correct
		}

		var answeredNth *int
		if answered {
			nth := timeIndex + 1
			answeredNth = &nth
		}

		ranking.EndRound = append(ranking.EndRound, PlayerEndRoundRanking{
			UserToken:          token,
			WasAnswerCorrect:   wasAnswerCorrect,
			PointsForThisRound: pointsForThisRound,
			TotalPoints:        playerPoints + pointsForThisRound,
			CurrentPosition:    scoredIndex + 1,
			AnsweredNth:        answeredNth,
		})
	}

	sort.SliceStable(ranking.EndRound, func(i, j int) bool {
		return ranking.EndRound[i].TotalPoints > ranking.EndRound[j].TotalPoints
	})

	return ranking, nil
}

type EndGameParams struct {
	UserToken     string
	GameID        string
	DidPlayerLost bool
	TotalPoints   int
	FinalPosition int
}

// CalculateEndGameRanking aggregates a player's answer-quality stats
// across the whole game. Total points and final position are passed
// through untouched.
func (e *Engine) CalculateEndGameRanking(ctx context.Context, params EndGameParams) (PlayerEndGameRanking, error) {
	playerAnswers, err := e.store.AnswersForPlayer(ctx, params.GameID, params.UserToken)
	if err != nil {
		return PlayerEndGameRanking{}, err
	}
	rounds, err := e.store.RoundsForGame(ctx, params.GameID)
	if err != nil {
		return PlayerEndGameRanking{}, err
	}

	answeredCorrectly := 0
	var totalAnswerTime int64
	for _, answer := range playerAnswers {
		rnd, ok := lo.Find(rounds, func(r round.Round) bool {
			return r.RoundIndex == answer.ForRoundIndex
		})
		if !ok {
			continue
		}

		if rnd.CorrectAnswerIndex != nil && *rnd.CorrectAnswerIndex == answer.AnswerIndex {
			answeredCorrectly++
		}
		totalAnswerTime += answer.AnswerTime.Sub(rnd.StartedAt).Milliseconds()
	}

	averageAnswerTime := 0
	if len(playerAnswers) > 0 {
		averageAnswerTime = int(math.Round(float64(totalAnswerTime) / float64(len(playerAnswers))))
	}

	return PlayerEndGameRanking{
		UserToken:                  params.UserToken,
		DidPlayerLost:              params.DidPlayerLost,
		TotalPoints:                params.TotalPoints,
		FinalPosition:              params.FinalPosition,
		QuestionsAnswered:          len(playerAnswers),
		QuestionsAnsweredCorrectly: answeredCorrectly,
		AverageAnswerTime:          averageAnswerTime,
	}, nil
}

// pointsForRound scores a single answer. A correct answer earns from
// 100% down to 50% of maxPoints depending on speed; a hint halves the
// result; an incorrect answer earns 0.
func pointsForRound(rnd *round.Round, answer round.Answer, correctAnswerIndex, maxPoints int) (int, int64) {
	answeredAfterMs := answer.AnswerTime.Sub(rnd.StartedAt).Milliseconds()
	if answer.AnswerIndex != correctAnswerIndex {
		return 0, answeredAfterMs
	}

	answeredAfterPercent := float64(answeredAfterMs) / float64(rnd.TimeInSeconds*1000)
	pointsPercent := 1 - answeredAfterPercent*0.5
	points := int(math.Round(float64(maxPoints) * pointsPercent))

	if answer.WasHintUsed {
		points = int(math.Round(float64(points) / 2))
	}
	return points, answeredAfterMs
}
