package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizely-service/internal/app"
	"quizely-service/internal/config"
	"quizely-service/internal/infra/memory"
	pgstore "quizely-service/internal/infra/postgres"
	redisstore "quizely-service/internal/infra/redis"
	transport "quizely-service/internal/transport/http"
	"quizely-service/internal/trivia"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	repo, cleanup, err := buildRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	board := app.NewLeaderboard(ctx, repo, cfg.Leaderboard.Capacity)
	service := app.NewGameService(buildQuestionSource(cfg), board, questionAmount(cfg))

	gameHandler := transport.NewGameHandler(service)
	boardHandler := transport.NewLeaderboardHandler(board)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", gameHandler.ServeWS)
	mux.HandleFunc("/leaderboard", boardHandler.ServeBoard)
	mux.HandleFunc("/leaderboard/export", boardHandler.ServeExport)
	mux.HandleFunc("/leaderboard/clear", boardHandler.ServeClear)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizely service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildRepository picks the durable store: Redis when configured, Postgres
// as the alternative, in-memory otherwise.
func buildRepository(ctx context.Context, cfg config.Config) (app.EntryRepository, func(), error) {
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ttl := config.TTLDuration(cfg.Redis.LastPlayerTTL, 10*time.Minute)
		return redisstore.NewLeaderboardRepository(client, ttl), func() { _ = client.Close() }, nil
	}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		return pgstore.NewLeaderboardRepository(pool), pool.Close, nil
	}

	return memory.NewLeaderboardRepository(), func() {}, nil
}

// buildQuestionSource wires the provider client behind the batch cache.
func buildQuestionSource(cfg config.Config) app.QuestionSource {
	client := trivia.NewClient(
		&http.Client{Timeout: 15 * time.Second},
		triviaURL(cfg),
		triviaCategory(cfg),
		triviaDifficulty(cfg),
	)
	cacheTTL := config.TTLDuration(cfg.Trivia.CacheTTL, 5*time.Minute)
	return trivia.NewLoader(trivia.NewBatchCache(client, cacheTTL))
}

func triviaURL(cfg config.Config) string {
	if cfg.Trivia.URL != "" {
		return cfg.Trivia.URL
	}
	return "https://opentdb.com"
}

func triviaCategory(cfg config.Config) int {
	if cfg.Trivia.Category > 0 {
		return cfg.Trivia.Category
	}
	return 9 // general knowledge
}

func triviaDifficulty(cfg config.Config) string {
	if cfg.Trivia.Difficulty != "" {
		return cfg.Trivia.Difficulty
	}
	return "medium"
}

func questionAmount(cfg config.Config) int {
	if cfg.Trivia.Amount > 0 {
		return cfg.Trivia.Amount
	}
	return 10
}
