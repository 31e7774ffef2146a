package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/toohak/trivia-backend/config"
	"github.com/toohak/trivia-backend/db"
	"github.com/toohak/trivia-backend/internal/httperror"
)

// Service manages admin accounts and the bearer tokens that the
// game-creator operations verify.
type Service struct {
	db  *sql.DB
	cfg config.Config
}

func NewService(database *sql.DB, cfg config.Config) *Service {
	return &Service{
		db:  database,
		cfg: cfg,
	}
}

func (s *Service) Register(username, password string) (db.User, error) {
	if username == "" || password == "" {
		return db.User{}, fmt.Errorf("username and password cannot be empty")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return db.User{}, err
	}

	userID := uuid.New()
	query := "INSERT INTO users (id, username, password, created_at) VALUES ($1, $2, $3, $4) RETURNING id, username, created_at"

	var user db.User
	err = s.db.QueryRow(query, userID, username, string(hashedPassword), time.Now()).Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return db.User{}, fmt.Errorf("username already exists")
		}
		return db.User{}, err
	}
	user.Password = string(hashedPassword)
	return user, nil
}

func (s *Service) Login(username, password string) (string, error) {
	var user db.User
	err := s.db.QueryRow(`
	SELECT id, username, password, created_at
	FROM users
	WHERE username = $1
`, username).Scan(&user.ID, &user.Username, &user.Password, &user.CreatedAt)
	if err != nil {
		return "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.String(),
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	})
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// VerifyToken validates a signed bearer token and returns the user id
// it was issued for.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", errors.New("invalid token claims")
	}
	return userID, nil
}

// BearerUserID extracts and verifies the Authorization header of an
// admin request.
func (s *Service) BearerUserID(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", httperror.Unauthorized("No authorization header")
	}

	authType, authValue, found := strings.Cut(authHeader, " ")
	if !found || authType != "Bearer" {
		return "", httperror.Unauthorized("Invalid authorization type")
	}
	if authValue == "" {
		return "", httperror.Unauthorized("No authorization value")
	}

	userID, err := s.VerifyToken(authValue)
	if err != nil {
		return "", httperror.Unauthorized("Invalid authorization token")
	}
	return userID, nil
}
