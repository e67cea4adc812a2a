package observability

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger tags the globally configured logger with app and installs it.
func InitLogger(app string) zerolog.Logger {
	logger := log.Logger.With().Str("app", app).Logger()
	log.Logger = logger
	return logger
}
