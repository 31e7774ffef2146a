package game

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/toohak/trivia-backend/internal/event"
	"github.com/toohak/trivia-backend/internal/httperror"
)

// Store is the slice of the games manager the handlers need.
type Store interface {
	CreateGame(ctx context.Context, templateID, createdBy string) (Game, error)
	GameByCode(ctx context.Context, code string) (*Game, error)
	AddPlayer(ctx context.Context, gameID string, player Player) error
}

// TokenVerifier authenticates the bearer token of an admin request.
type TokenVerifier interface {
	BearerUserID(r *http.Request) (string, error)
}

// Notifier delivers best-effort events to connected participants.
type Notifier interface {
	Notify(token string, eventType string, data any)
}

type Handler struct {
	store    Store
	verifier TokenVerifier
	notifier Notifier
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(store Store, verifier TokenVerifier, notifier Notifier, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		verifier: verifier,
		notifier: notifier,
		validate: validator.New(),
		logger:   logger,
	}
}

type CreateGameRequest struct {
	TemplateID string `json:"template_id" validate:"required"`
}

type CreateGameResponse struct {
	GameID string `json:"game_id"`
	Token  string `json:"token"`
}

func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	userID, err := h.verifier.BearerUserID(r)
	if err != nil {
		httperror.Write(w, err)
		return
	}

	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperror.Write(w, httperror.BadRequest("Invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httperror.Write(w, httperror.BadRequest(err.Error()))
		return
	}

	game, err := h.store.CreateGame(r.Context(), req.TemplateID, userID)
	if err != nil {
		h.logger.Error("failed to create game", "error", err)
		httperror.Write(w, err)
		return
	}

	httperror.WriteJSON(w, CreateGameResponse{
		GameID: game.ID,
		Token:  game.AdminToken,
	})
}

type JoinGameRequest struct {
	Code     string `json:"code" validate:"required"`
	Username string `json:"username" validate:"required"`
}

type JoinGameResponse struct {
	GameID string `json:"game_id"`
	Token  string `json:"token"`
}

func (h *Handler) JoinGame(w http.ResponseWriter, r *http.Request) {
	var req JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperror.Write(w, httperror.BadRequest("Invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httperror.Write(w, httperror.BadRequest(err.Error()))
		return
	}

	game, err := h.store.GameByCode(r.Context(), req.Code)
	if err != nil {
		h.logger.Error("failed to look up game", "code", req.Code, "error", err)
		httperror.Write(w, err)
		return
	}
	if game == nil {
		httperror.Write(w, httperror.NotFound("Game not found"))
		return
	}

	if game.SignUpBlocked {
		httperror.Write(w, httperror.Forbidden("Sign up blocked"))
		return
	}

	for _, player := range game.Players {
		if NormalizeUsername(player.Username) == NormalizeUsername(req.Username) {
			httperror.Write(w, httperror.Forbidden("Username already taken"))
			return
		}
	}

	token, err := GenerateToken()
	if err != nil {
		httperror.Write(w, err)
		return
	}

	if err := h.store.AddPlayer(r.Context(), game.ID, Player{Username: req.Username, Token: token}); err != nil {
		h.logger.Error("failed to add player", "game_id", game.ID, "error", err)
		httperror.Write(w, err)
		return
	}

	h.logger.Info("player joined", "game_id", game.ID, "username", req.Username)
	h.notifier.Notify(game.AdminToken, string(event.PlayerJoined), event.PlayerJoinedData{Username: req.Username})

	httperror.WriteJSON(w, JoinGameResponse{
		GameID: game.ID,
		Token:  token,
	})
}
