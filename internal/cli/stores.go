package cli

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/sirupsen/logrus"
	"quiz-outcome-service/internal/app"
	"quiz-outcome-service/internal/config"
	"quiz-outcome-service/internal/infra/memory"
	"quiz-outcome-service/internal/infra/postgres"
)

// stores bundles the admin store and the public read path.
type stores struct {
	admin   app.QuizStore
	reader  app.QuizReader
	closers []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openStores connects to Postgres when a URL is configured and falls back to
// the in-process store otherwise. Migrations run before the stores are returned.
func openStores(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*stores, error) {
	if cfg.Postgres.URL == "" {
		log.Warn("postgres url not configured, quizzes are kept in memory")
		store := memory.NewStore()
		return &stores{admin: store, reader: store}, nil
	}

	db := openBunDB(cfg.Postgres.URL)
	if err := migrateDB(ctx, db, log); err != nil {
		db.Close()
		return nil, err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &stores{
		admin:   postgres.NewStore(db),
		reader:  postgres.NewQuizLoader(pool),
		closers: []func(){func() { db.Close() }, pool.Close},
	}, nil
}
