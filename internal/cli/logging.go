package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"quiz-outcome-service/internal/config"
)

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.WithField("level", cfg.Log.Level).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// warnInsecureDefaults reports settings that are only acceptable in development.
func warnInsecureDefaults(log logrus.FieldLogger, cfg config.Config) {
	if cfg.Admin.PasswordHash == "" {
		if cfg.Admin.Username == config.DefaultAdminUsername && cfg.Admin.Password == config.DefaultAdminPassword {
			log.Warn("admin login uses the default admin/admin credentials")
		} else {
			log.Warn("admin password is configured in plaintext, set admin.password_hash instead")
		}
	}
	if cfg.Server.SecretKey == config.DefaultSecretKey {
		log.Warn("session cookies are signed with the default secret key, set SECRET_KEY")
	}
	log.Warn("/create-sample-data is reachable without login and wipes all quiz data")
}
