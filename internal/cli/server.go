package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EryGltkn/CN-termproject/internal/config"
	"github.com/EryGltkn/CN-termproject/internal/domain"
	"github.com/EryGltkn/CN-termproject/internal/engine"
	filebank "github.com/EryGltkn/CN-termproject/internal/infra/file"
	"github.com/EryGltkn/CN-termproject/internal/infra/memory"
	pgbank "github.com/EryGltkn/CN-termproject/internal/infra/postgres"
	redisinfra "github.com/EryGltkn/CN-termproject/internal/infra/redis"
	transport "github.com/EryGltkn/CN-termproject/internal/transport/http"
	"github.com/EryGltkn/CN-termproject/internal/transport/tcp"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// bankSource abstracts the cache layer in front of a bank loader.
type bankSource interface {
	GetBank(ctx context.Context, bankID string) (domain.Bank, error)
}

// NewServeCmd builds the CLI subcommand to start the trivia server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		logger.Warn().Str("path", configPath).Msg("config file not found, using defaults")
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	tcpPort := portFlag
	if tcpPort == "" {
		tcpPort = cfg.Server.Port
	}
	if tcpPort == "" {
		tcpPort = "12345"
	}
	adminPort := cfg.Admin.Port
	if adminPort == "" {
		adminPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.BankLoader
	switch {
	case pool != nil:
		loader = pgbank.NewBankLoader(pool)
	case cfg.Quiz.File != "":
		loader = filebank.NewBankLoader(cfg.Quiz.File)
	default:
		loader = memory.NewStaticBankLoader(map[string]domain.Bank{"default": sampleBank()})
	}

	bankTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	var banks bankSource
	if redisClient != nil {
		banks = redisinfra.NewBankRepository(redisClient, loader, bankTTL)
	} else {
		banks = memory.NewBankRepository(loader, bankTTL)
	}

	bankID := cfg.Quiz.Bank
	if bankID == "" {
		bankID = "default"
	}

	// No session can run without questions; a load failure aborts startup.
	bank, err := banks.GetBank(ctx, bankID)
	if err != nil {
		logger.Error().Str("bank", bankID).Err(err).Msg("question bank load failed")
		return err
	}
	logger.Info().Str("bank", bankID).Int("questions", len(bank.Questions)).Msg("question bank loaded")

	clock := clockwork.NewRealClock()
	writeTimeout := config.Duration(cfg.Quiz.WriteTimeout, 5*time.Second)
	session := engine.NewSession(clock, logger, writeTimeout)

	var sink engine.ResultSink
	if redisClient != nil {
		sink = redisinfra.NewScoreArchive(redisClient, config.Duration(cfg.Redis.TTL, 24*time.Hour))
	}

	eng := engine.NewEngine(session, bank, engine.Config{
		MinParticipants: cfg.Quiz.MinParticipants,
		GracePause:      config.Duration(cfg.Quiz.GracePause, 2*time.Second),
	}, clock, logger, sink)

	tcpServer := tcp.NewServer(session, logger)
	if err := tcpServer.Listen(cfg.Server.Host, tcpPort); err != nil {
		return err
	}
	defer tcpServer.Close()

	adminHandler := transport.NewHandler(session, eng, logger)
	adminServer := &http.Server{
		Addr:         ":" + adminPort,
		Handler:      adminHandler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", adminServer.Addr).Msg("admin interface up")
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info().Msg("shutting down")
	case <-ctx.Done():
		logger.Info().Msg("context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return adminServer.Shutdown(shutdownCtx)
}

// sampleBank keeps the server usable without any configured store.
func sampleBank() domain.Bank {
	return domain.Bank{
		ID: "default",
		Questions: []domain.Question{
			{
				Prompt: "Which protocol does this quiz run over?",
				A:      "UDP",
				B:      "TCP",
				C:      "ICMP",
				D:      "SCTP",
				Answer: "B",
			},
			{
				Prompt: "Which port does HTTPS use by default?",
				A:      "80",
				B:      "21",
				C:      "443",
				D:      "25",
				Answer: "C",
			},
			{
				Prompt: "What does DNS resolve?",
				A:      "Names to addresses",
				B:      "Routes to gateways",
				C:      "Frames to packets",
				D:      "Ports to sockets",
				Answer: "A",
			},
		},
	}
}
