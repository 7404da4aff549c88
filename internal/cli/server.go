package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"quiz-outcome-service/internal/app"
	"quiz-outcome-service/internal/config"
	"quiz-outcome-service/internal/infra/memory"
	redissession "quiz-outcome-service/internal/infra/redis"
	transport "quiz-outcome-service/internal/transport/http"
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
	logger := newLogger(cfg)
	log := logger.WithField("component", "server")
	warnInsecureDefaults(log, cfg)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	sessionTTL := config.TTLDuration(cfg.Server.SessionTTL, 24*time.Hour)
	var sessions app.SessionRepository
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("redis not reachable yet, sessions will fail until it is")
		}
		sessions = redissession.NewSessionStore(client, sessionTTL)
	} else {
		store := memory.NewSessionStore(sessionTTL)
		janitorCtx, stopJanitor := context.WithCancel(ctx)
		defer stopJanitor()
		go store.Janitor(janitorCtx, time.Minute)
		sessions = store
	}

	srv, err := transport.NewServer(transport.Options{
		Quizzes: app.NewQuizService(st.reader),
		Admin:   app.NewAdminService(st.admin),
		Sessions: app.NewSessionService(sessions, app.Credentials{
			Username:     cfg.Admin.Username,
			Password:     cfg.Admin.Password,
			PasswordHash: cfg.Admin.PasswordHash,
		}),
		SecretKey:  cfg.Server.SecretKey,
		SessionTTL: sessionTTL,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
