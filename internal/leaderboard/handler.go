package leaderboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toohak/trivia-backend/internal/game"
	"github.com/toohak/trivia-backend/internal/httperror"
)

type Games interface {
	GameByID(ctx context.Context, gameID string) (*game.Game, error)
}

type Handler struct {
	service *Service
	games   Games
	logger  *slog.Logger
}

func NewHandler(service *Service, games Games, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		games:   games,
		logger:  logger,
	}
}

type LeaderboardResponse struct {
	Leaderboard []Entry `json:"leaderboard"`
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameId")
	if gameID == "" {
		httperror.Write(w, httperror.BadRequest("Missing game id"))
		return
	}

	g, err := h.games.GameByID(r.Context(), gameID)
	if err != nil {
		h.logger.Error("failed to look up game", "game_id", gameID, "error", err)
		httperror.Write(w, err)
		return
	}
	if g == nil {
		httperror.Write(w, httperror.NotFound("Game not found"))
		return
	}

	entries, err := h.service.Scores(r.Context(), g.ID)
	if err != nil {
		h.logger.Error("failed to load leaderboard", "game_id", gameID, "error", err)
		httperror.Write(w, err)
		return
	}

	for i := range entries {
		if player := g.PlayerByToken(entries[i].Token); player != nil {
			entries[i].Username = player.Username
		}
	}

	httperror.WriteJSON(w, LeaderboardResponse{Leaderboard: entries})
}
