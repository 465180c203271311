package cli

import (
	"io"
	"log/slog"

	"github.com/felixgeelhaar/panelist/pkg/config"
	"github.com/felixgeelhaar/panelist/pkg/observability"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	logCfg := observability.DefaultLogConfig()
	logCfg.Output = out
	logCfg.ServiceVersion = Version
	if cfg != nil {
		logCfg.Level = observability.LogLevel(cfg.LogLevel)
		logCfg.Format = observability.LogFormat(cfg.LogFormat)
	}
	return observability.NewLogger(logCfg)
}
