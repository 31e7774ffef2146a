package round

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/toohak/trivia-backend/internal/game"
	"github.com/toohak/trivia-backend/internal/httperror"
)

// Games is the slice of the games manager the round handlers need.
type Games interface {
	GameByID(ctx context.Context, gameID string) (*game.Game, error)
}

type TokenVerifier interface {
	BearerUserID(r *http.Request) (string, error)
}

type Handler struct {
	games    Games
	rounds   *Service
	verifier TokenVerifier
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(games Games, rounds *Service, verifier TokenVerifier, logger *slog.Logger) *Handler {
	return &Handler{
		games:    games,
		rounds:   rounds,
		verifier: verifier,
		validate: validator.New(),
		logger:   logger,
	}
}

type SendQuestionRequest struct {
	GameID        string   `json:"game_id" validate:"required"`
	Question      string   `json:"question" validate:"required"`
	Hint          *string  `json:"hint" validate:"omitempty,min=1"`
	IsDouble      bool     `json:"is_double"`
	Answers       []string `json:"answers" validate:"required,min=2,dive,required"`
	TimeInSeconds int      `json:"time_in_seconds" validate:"required,gt=0"`
	IsHardcore    bool     `json:"is_hardcore"`
}

type SendQuestionResponse struct {
	FinishWhen time.Time `json:"finish_when"`
}

func (h *Handler) SendQuestion(w http.ResponseWriter, r *http.Request) {
	userID, err := h.verifier.BearerUserID(r)
	if err != nil {
		httperror.Write(w, err)
		return
	}

	var req SendQuestionRequest
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

	finishWhen, err := h.rounds.CreateRound(r.Context(), g, QuestionParams{
		Question:      req.Question,
		Hint:          req.Hint,
		IsDouble:      req.IsDouble,
		Answers:       req.Answers,
		TimeInSeconds: req.TimeInSeconds,
		IsHardcore:    req.IsHardcore,
	})
	if err != nil {
		httperror.Write(w, err)
		return
	}

	httperror.WriteJSON(w, SendQuestionResponse{FinishWhen: finishWhen})
}

type SendAnswerRequest struct {
	GameID      string `json:"game_id" validate:"required"`
	Token       string `json:"token" validate:"required"`
	AnswerIndex int    `json:"answer_index" validate:"gte=0"`
	WasHintUsed bool   `json:"was_hint_used"`
	Timestamp   string `json:"timestamp" validate:"required"`
}

func (h *Handler) SendAnswer(w http.ResponseWriter, r *http.Request) {
	var req SendAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperror.Write(w, httperror.BadRequest("Invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httperror.Write(w, httperror.BadRequest(err.Error()))
		return
	}

	answerTime, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		httperror.Write(w, httperror.BadRequest("Invalid timestamp"))
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

	if err := h.rounds.RecordAnswer(r.Context(), g, req.Token, req.AnswerIndex, req.WasHintUsed, answerTime); err != nil {
		httperror.Write(w, err)
		return
	}

	httperror.WriteJSON(w, map[string]any{})
}
