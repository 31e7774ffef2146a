package game

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	joinCodeAttempts = 5
	tokenBytes       = 64
)

type Service struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewService(database *sql.DB, logger *slog.Logger) *Service {
	return &Service{
		db:     database,
		logger: logger,
	}
}

// CreateGame stores a new game with a fresh join code and admin token.
// Join codes are unique among stored games; a collision retries with a
// new code.
func (s *Service) CreateGame(ctx context.Context, templateID, createdBy string) (Game, error) {
	adminToken, err := GenerateToken()
	if err != nil {
		return Game{}, fmt.Errorf("failed to generate admin token: %w", err)
	}

	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		code, err := generateJoinCode()
		if err != nil {
			return Game{}, fmt.Errorf("failed to generate join code: %w", err)
		}

		game := Game{
			ID:            uuid.New().String(),
			TemplateID:    templateID,
			Code:          code,
			AdminToken:    adminToken,
			Players:       []Player{},
			SignUpBlocked: false,
			CreatedBy:     createdBy,
		}

		_, err = s.db.ExecContext(ctx, `
		INSERT INTO games (id, code, template_id, admin_token, sign_up_blocked, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, game.ID, game.Code, game.TemplateID, game.AdminToken, game.SignUpBlocked, game.CreatedBy)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				s.logger.Warn("join code collision, retrying", "code", code)
				continue
			}
			return Game{}, fmt.Errorf("failed to create game: %w", err)
		}

		s.logger.Info("created game", "game_id", game.ID, "code", game.Code)
		return game, nil
	}

	return Game{}, fmt.Errorf("could not find a free join code after %d attempts", joinCodeAttempts)
}

func (s *Service) GameByID(ctx context.Context, gameID string) (*Game, error) {
	return s.loadGame(ctx, `
	SELECT id, code, template_id, admin_token, sign_up_blocked, created_by
	FROM games
	WHERE id = $1
`, gameID)
}

func (s *Service) GameByCode(ctx context.Context, code string) (*Game, error) {
	return s.loadGame(ctx, `
	SELECT id, code, template_id, admin_token, sign_up_blocked, created_by
	FROM games
	WHERE code = $1
`, code)
}

func (s *Service) loadGame(ctx context.Context, query, arg string) (*Game, error) {
	var game Game
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&game.ID, &game.Code, &game.TemplateID, &game.AdminToken, &game.SignUpBlocked, &game.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT token, username
	FROM players
	WHERE game_id = $1
	ORDER BY joined_at
`, game.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	defer rows.Close()

	game.Players = []Player{}
	for rows.Next() {
		var player Player
		if err := rows.Scan(&player.Token, &player.Username); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		game.Players = append(game.Players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read players: %w", err)
	}

	return &game, nil
}

func (s *Service) AddPlayer(ctx context.Context, gameID string, player Player) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO players (game_id, token, username, joined_at)
	VALUES ($1, $2, $3, now())
`, gameID, player.Token, player.Username)
	if err != nil {
		return fmt.Errorf("failed to add player: %w", err)
	}
	return nil
}

func (s *Service) RemovePlayer(ctx context.Context, gameID, token string) error {
	_, err := s.db.ExecContext(ctx, `
	DELETE FROM players
	WHERE game_id = $1 AND token = $2
`, gameID, token)
	if err != nil {
		return fmt.Errorf("failed to remove player: %w", err)
	}
	return nil
}

func (s *Service) BlockSignUp(ctx context.Context, gameID string) error {
	_, err := s.db.ExecContext(ctx, `
	UPDATE games
	SET sign_up_blocked = true
	WHERE id = $1
`, gameID)
	if err != nil {
		return fmt.Errorf("failed to block sign up: %w", err)
	}
	return nil
}

// NormalizeUsername is the comparison key for roster uniqueness:
// usernames differing only by case or surrounding whitespace collide.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// generateJoinCode returns a short numeric code, zero-padded to six
// digits.
func generateJoinCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateToken returns an opaque participant secret.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
