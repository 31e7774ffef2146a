package ws

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/toohak/trivia-backend/internal/game"
)

type GameLookup interface {
	GameByID(ctx context.Context, gameID string) (*game.Game, error)
}

// NewGameResolver builds the handshake resolver for the trivia game:
// the payload is "<token>\n<game_id>", and the token must match the
// game's admin token or a roster player's token.
func NewGameResolver(games GameLookup, logger *slog.Logger) HandshakeResolver {
	return func(ctx context.Context, payload string) (string, error) {
		token, rest, found := strings.Cut(payload, "\n")
		gameID, _, _ := strings.Cut(rest, "\n")
		if !found || token == "" || gameID == "" {
			return "", errors.New("missing game_id or token")
		}

		g, err := games.GameByID(ctx, gameID)
		if err != nil {
			return "", err
		}
		if g == nil {
			return "", errors.New("game not found")
		}

		if g.AdminToken == token {
			logger.Info("registering admin", "game_id", gameID)
			return token, nil
		}

		if g.PlayerByToken(token) != nil {
			logger.Info("registering player", "game_id", gameID)
			return token, nil
		}

		return "", errors.New("token not recognized for game")
	}
}
