package ranking

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/toohak/trivia-backend/internal/event"
	"github.com/toohak/trivia-backend/internal/game"
	"github.com/toohak/trivia-backend/internal/httperror"
	"github.com/toohak/trivia-backend/internal/round"
)

// Games is the slice of the games manager the ranking handlers need.
type Games interface {
	GameByID(ctx context.Context, gameID string) (*game.Game, error)
	RemovePlayer(ctx context.Context, gameID, token string) error
}

type TokenVerifier interface {
	BearerUserID(r *http.Request) (string, error)
}

type Notifier interface {
	Notify(token string, eventType string, data any)
}

// Scoreboard records cumulative per-game scores for the leaderboard
// re-query surface.
type Scoreboard interface {
	SetScore(ctx context.Context, gameID, token string, points int) error
	RemoveScore(ctx context.Context, gameID, token string) error
}

type Handler struct {
	games      Games
	rounds     *round.Service
	engine     *Engine
	notifier   Notifier
	scoreboard Scoreboard
	verifier   TokenVerifier
	validate   *validator.Validate
	logger     *slog.Logger
}

func NewHandler(games Games, rounds *round.Service, engine *Engine, notifier Notifier, scoreboard Scoreboard, verifier TokenVerifier, logger *slog.Logger) *Handler {
	return &Handler{
		games:      games,
		rounds:     rounds,
		engine:     engine,
		notifier:   notifier,
		scoreboard: scoreboard,
		verifier:   verifier,
		validate:   validator.New(),
		logger:     logger,
	}
}

type RankingPlayerRequest struct {
	Token     string `json:"token" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Points    int    `json:"points" validate:"gte=0"`
	RoundLost *int   `json:"round_lost"`
}

type FinishRoundRequest struct {
	GameID             string                 `json:"game_id" validate:"required"`
	CorrectAnswerIndex int                    `json:"correct_answer_index" validate:"gte=0"`
	MaxPoints          int                    `json:"max_points" validate:"required,gt=0"`
	CurrentRanking     []RankingPlayerRequest `json:"current_ranking" validate:"dive"`
}

type FinishRoundResponse struct {
	Ranking []game.RankingPlayer `json:"ranking"`
}

func (h *Handler) FinishRound(w http.ResponseWriter, r *http.Request) {
	userID, err := h.verifier.BearerUserID(r)
	if err != nil {
		httperror.Write(w, err)
		return
	}

	var req FinishRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperror.Write(w, httperror.BadRequest("Invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httperror.Write(w, httperror.BadRequest(err.Error()))
		return
	}

	g, err := h.games.GameByID(r.Context(), req.GameID)
	if err != nil {
		h.logger.Error("failed to look up game", "game_id", req.GameID, "error", err)
		httperror.Write(w, err)
		return
	}
	if g == nil {
		httperror.Write(w, httperror.NotFound("Game not found"))
		return
	}
	if g.CreatedBy != userID {
		httperror.Write(w, httperror.Forbidden("You are not the owner of this game"))
		return
	}

	rnd, err := h.rounds.FinishRound(r.Context(), g.ID, req.CorrectAnswerIndex)
	if err != nil {
		httperror.Write(w, err)
		return
	}

	currentPoints := make(map[string]int, len(req.CurrentRanking))
	for _, rankingPlayer := range req.CurrentRanking {
		currentPoints[rankingPlayer.Token] = rankingPlayer.Points
	}

	ranking, err := h.engine.CalculateRanking(r.Context(), g, rnd, req.CorrectAnswerIndex, req.MaxPoints, currentPoints)
	if err != nil {
		h.logger.Error("failed to calculate ranking", "game_id", g.ID, "error", err)
		httperror.Write(w, err)
		return
	}

	finalRanking := []game.RankingPlayer{}

	for _, endGameRanking := range ranking.EndGame {
		h.notifier.Notify(endGameRanking.UserToken, string(event.GameOver), event.GameOverData{
			DidPlayerLost:              endGameRanking.DidPlayerLost,
			TotalPoints:                endGameRanking.TotalPoints,
			FinalPosition:              endGameRanking.FinalPosition,
			QuestionsAnswered:          endGameRanking.QuestionsAnswered,
			QuestionsAnsweredCorrectly: endGameRanking.QuestionsAnsweredCorrectly,
			AverageAnswerTime:          endGameRanking.AverageAnswerTime,
		})

		player := g.PlayerByToken(endGameRanking.UserToken)
		if player == nil {
			h.logger.Error("eliminated player not on roster", "game_id", g.ID)
			continue
		}

		if err := h.games.RemovePlayer(r.Context(), g.ID, player.Token); err != nil {
			h.logger.Error("failed to remove eliminated player", "game_id", g.ID, "error", err)
			httperror.Write(w, err)
			return
		}
		if err := h.scoreboard.RemoveScore(r.Context(), g.ID, player.Token); err != nil {
			h.logger.Warn("failed to drop eliminated player from scoreboard", "game_id", g.ID, "error", err)
		}

		roundLost := rnd.RoundIndex
		finalRanking = append(finalRanking, game.RankingPlayer{
			Token:     endGameRanking.UserToken,
			Username:  player.Username,
			Points:    endGameRanking.TotalPoints,
			RoundLost: &roundLost,
		})
	}

	for _, endRoundRanking := range ranking.EndRound {
		h.notifier.Notify(endRoundRanking.UserToken, string(event.RoundFinished), event.RoundFinishedData{
			WasAnswerCorrect:   endRoundRanking.WasAnswerCorrect,
			PointsForThisRound: endRoundRanking.PointsForThisRound,
			TotalPoints:        endRoundRanking.TotalPoints,
			CurrentPosition:    endRoundRanking.CurrentPosition,
			AnsweredNth:        endRoundRanking.AnsweredNth,
		})

		player := g.PlayerByToken(endRoundRanking.UserToken)
		if player == nil {
			h.logger.Error("ranked player not on roster", "game_id", g.ID)
			continue
		}

		if err := h.scoreboard.SetScore(r.Context(), g.ID, player.Token, endRoundRanking.TotalPoints); err != nil {
			h.logger.Warn("failed to update scoreboard", "game_id", g.ID, "error", err)
		}

		finalRanking = append(finalRanking, game.RankingPlayer{
			Token:     endRoundRanking.UserToken,
			Username:  player.Username,
			Points:    endRoundRanking.TotalPoints,
			RoundLost: nil,
		})
	}

	httperror.WriteJSON(w, FinishRoundResponse{Ranking: finalRanking})
}

type FinishGameRequest struct {
	GameID         string                 `json:"game_id" validate:"required"`
	CurrentRanking []RankingPlayerRequest `json:"current_ranking" validate:"dive"`
}

type EndGameResult struct {
	PlayerToken                string `json:"player_token"`
	PlayerUsername             string `json:"player_username"`
	Points                     int    `json:"points"`
	QuestionsAnswered          int    `json:"questions_answered"`
	QuestionsAnsweredCorrectly int    `json:"questions_answered_correctly"`
	AverageAnswerTime          int    `json:"average_answer_time"`
}

type FinishGameResponse struct {
	Results []EndGameResult `json:"results"`
}

func (h *Handler) FinishGame(w http.ResponseWriter, r *http.Request) {
	userID, err := h.verifier.BearerUserID(r)
	if err != nil {
		httperror.Write(w, err)
		return
	}

	var req FinishGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperror.Write(w, httperror.BadRequest("Invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httperror.Write(w, httperror.BadRequest(err.Error()))
		return
	}

	g, err := h.games.GameByID(r.Context(), req.GameID)
	if err != nil {
		h.logger.Error("failed to look up game", "game_id", req.GameID, "error", err)
		httperror.Write(w, err)
		return
	}
	if g == nil {
		httperror.Write(w, httperror.NotFound("Game not found"))
		return
	}
	if g.CreatedBy != userID {
		httperror.Write(w, httperror.Forbidden("You are not the owner of this game"))
		return
	}

	lastRound, err := h.rounds.LastRound(r.Context(), g.ID)
	if err != nil {
		httperror.Write(w, err)
		return
	}
	if lastRound == nil {
		httperror.Write(w, httperror.NotFound("Round not found"))
		return
	}
	if !lastRound.IsFinished {
		httperror.Write(w, httperror.Forbidden("Round is not finished"))
		return
	}

	currentRanking := make([]RankingPlayerRequest, len(req.CurrentRanking))
	copy(currentRanking, req.CurrentRanking)
	sort.SliceStable(currentRanking, func(i, j int) bool {
		return currentRanking[i].Points > currentRanking[j].Points
	})

	results := []EndGameResult{}

	for _, player := range g.Players {
		token := player.Token
		ranked, indexInRanking, found := lo.FindIndexOf(currentRanking, func(rp RankingPlayerRequest) bool {
			return rp.Token == token
		})

		// A roster player missing from the reported ranking gets zero
		// points and no position rather than failing the whole call.
		points := 0
		finalPosition := 0
		if found {
			points = ranked.Points
			finalPosition = indexInRanking + 1
		}

		endGameRanking, err := h.engine.CalculateEndGameRanking(r.Context(), EndGameParams{
			GameID:        g.ID,
			UserToken:     player.Token,
			DidPlayerLost: false,
			TotalPoints:   points,
			FinalPosition: finalPosition,
		})
		if err != nil {
			h.logger.Error("failed to calculate end game ranking", "game_id", g.ID, "error", err)
			httperror.Write(w, err)
			return
		}

		results = append(results, EndGameResult{
			PlayerToken:                player.Token,
			PlayerUsername:             player.Username,
			Points:                     endGameRanking.TotalPoints,
			QuestionsAnswered:          endGameRanking.QuestionsAnswered,
			QuestionsAnsweredCorrectly: endGameRanking.QuestionsAnsweredCorrectly,
			AverageAnswerTime:          endGameRanking.AverageAnswerTime,
		})

		h.notifier.Notify(player.Token, string(event.GameOver), event.GameOverData{
			DidPlayerLost:              endGameRanking.DidPlayerLost,
			TotalPoints:                endGameRanking.TotalPoints,
			FinalPosition:              endGameRanking.FinalPosition,
			QuestionsAnswered:          endGameRanking.QuestionsAnswered,
			QuestionsAnsweredCorrectly: endGameRanking.QuestionsAnsweredCorrectly,
			AverageAnswerTime:          endGameRanking.AverageAnswerTime,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Points > results[j].Points
	})

	httperror.WriteJSON(w, FinishGameResponse{Results: results})
}
