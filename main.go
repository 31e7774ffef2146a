package main

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/lmittmann/tint"

	"github.com/toohak/trivia-backend/config"
	"github.com/toohak/trivia-backend/internal/auth"
	"github.com/toohak/trivia-backend/internal/game"
	"github.com/toohak/trivia-backend/internal/leaderboard"
	"github.com/toohak/trivia-backend/internal/ranking"
	"github.com/toohak/trivia-backend/internal/round"
	"github.com/toohak/trivia-backend/internal/ws"
	redisPkg "github.com/toohak/trivia-backend/pkg/redis"
	wsPkg "github.com/toohak/trivia-backend/pkg/websocket"
)

func main() {
	cfg := config.LoadConfig()

	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	database, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatal("Failed to connect database:", err)
	}
	defer database.Close()

	rdb := redisPkg.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)

	registry := wsPkg.NewRegistry(logger)

	authService := auth.NewService(database, cfg)
	authHandler := auth.NewAuthHandler(authService)

	gameService := game.NewService(database, logger)
	gameHandler := game.NewHandler(gameService, authService, registry, logger)

	roundStore := round.NewRedisStore(rdb)
	roundService := round.NewService(roundStore, registry, logger)
	roundHandler := round.NewHandler(gameService, roundService, authService, logger)

	scoreboard := leaderboard.NewService(rdb)
	scoreboardHandler := leaderboard.NewHandler(scoreboard, gameService, logger)

	rankingEngine := ranking.NewEngine(roundStore, logger)
	rankingHandler := ranking.NewHandler(gameService, roundService, rankingEngine, registry, scoreboard, authService, logger)

	wsHandler := ws.NewHandler(registry, ws.NewGameResolver(gameService, logger), logger)

	mux := chi.NewRouter()
	mux.Use(cors.AllowAll().Handler)

	mux.Post("/api/v1/auth/register", authHandler.Register)
	mux.Post("/api/v1/auth/login", authHandler.Login)

	mux.Post("/create_game", gameHandler.CreateGame)
	mux.Post("/join_game", gameHandler.JoinGame)
	mux.Post("/send_question", roundHandler.SendQuestion)
	mux.Post("/send_answer", roundHandler.SendAnswer)
	mux.Post("/finish_round", rankingHandler.FinishRound)
	mux.Post("/finish_game", rankingHandler.FinishGame)

	mux.Get("/games/{gameId}/leaderboard", scoreboardHandler.GetLeaderboard)

	mux.Get("/connect", wsHandler.ServeWS)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("server starting", "addr", addr)
	log.Fatal(http.ListenAndServeTLS(addr, cfg.FullchainPath, cfg.PrivkeyPath, mux))
}
