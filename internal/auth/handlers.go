package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/toohak/trivia-backend/internal/httperror"
)

type AuthHandler struct {
	service  *Service
	validate *validator.Validate
}

func NewAuthHandler(service *Service) *AuthHandler {
	return &AuthHandler{
		service:  service,
		validate: validator.New(),
	}
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperror.Write(w, httperror.BadRequest("Invalid request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httperror.Write(w, httperror.BadRequest(err.Error()))
		return
	}

	if _, err := h.service.Register(req.Username, req.Password); err != nil {
		httperror.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"message": "User registered successfully"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperror.Write(w, httperror.BadRequest("Invalid request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httperror.Write(w, httperror.BadRequest(err.Error()))
		return
	}

	token, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		httperror.Write(w, httperror.Unauthorized(err.Error()))
		return
	}

	httperror.WriteJSON(w, map[string]string{"token": token})
}
