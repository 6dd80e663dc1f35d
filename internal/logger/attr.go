package logger

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Attribute helpers use the empty Attr pattern for nil safety, so call sites
// never need explicit nil checks: log.Info("msg", logger.Error(err)).

// Error creates an attribute for a single error under the key "error".
// Returns an empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component tags a record with the emitting component name.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// UserID creates an attribute for a user identifier.
// Returns an empty Attr for the nil UUID.
func UserID(id uuid.UUID) slog.Attr {
	if id == uuid.Nil {
		return slog.Attr{}
	}
	return slog.String("user_id", id.String())
}

// Path creates an attribute for a request or object path.
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// Locale creates an attribute for a resolved locale.
func Locale(locale string) slog.Attr {
	return slog.String("locale", locale)
}

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
