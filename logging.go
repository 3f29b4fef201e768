package mediaforge

import "go.uber.org/zap"

// NewLogger builds the process-wide *zap.Logger (A2): development config
// (console-friendly, debug level) for the "local" profile, production
// config (JSON, info level) otherwise.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
