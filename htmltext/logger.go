package htmltext

import (
	"log/slog"

	"github.com/ByLCY/htmltext/internal/logging"
)

// SetLogger sets the logger used by htmltext and the packages it drives
// (fonts, style). nil restores the silent default.
func SetLogger(l *slog.Logger) { logging.Set(l) }

// Logger returns the current logger.
func Logger() *slog.Logger { return logging.Logger() }
