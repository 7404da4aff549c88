package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"quiz-outcome-service/internal/app"
	"quiz-outcome-service/internal/config"
)

// NewSeedCmd replaces the database contents with the sample quiz.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Wipe all quizzes and load the sample quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured, nothing to seed")
			}
			log := newLogger(cfg)
			st, err := openStores(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := app.NewAdminService(st.admin).SeedSampleData(cmd.Context()); err != nil {
				return err
			}
			log.Info("sample data created")
			return nil
		},
	}
}
