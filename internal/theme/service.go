package theme

import (
	"context"
	"fmt"
	"log/slog"

	"growth/internal/cache"
	applog "growth/internal/log"
)

// Service reads and writes a client's theme, caching what it has seen.
type Service struct {
	store  Store
	cache  cache.Cache[Theme]
	logger *slog.Logger
}

func NewService(store Store, c cache.Cache[Theme], logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, cache: c, logger: logger}
}

// Get returns the stored theme, or Default when nothing is stored or the
// store cannot be read.
func (s *Service) Get(ctx context.Context, clientID string) Theme {
	if clientID == "" {
		return Default
	}
	if s.cache != nil {
		if t, ok := s.cache.Get(clientID); ok {
			return t
		}
	}

	v, ok, err := s.store.Get(ctx, clientID, Key)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read theme preference, using default",
			applog.FieldClientID, clientID, applog.FieldError, err,
			applog.FieldOperation, applog.OpRead, applog.FieldErrorType, applog.ErrorTypeDatabase)
		return Default
	}
	t := Default
	if ok {
		t = Parse(v)
	}
	if s.cache != nil {
		s.cache.Set(clientID, t)
	}
	return t
}

// Set stores t for the client. The cache is only updated once the store
// accepted the write.
func (s *Service) Set(ctx context.Context, clientID string, t Theme) error {
	if clientID == "" {
		return fmt.Errorf("set theme: empty client id")
	}
	t = Parse(string(t))
	if err := s.store.Put(ctx, clientID, Key, t.String()); err != nil {
		if s.cache != nil {
			s.cache.Delete(clientID)
		}
		return fmt.Errorf("set theme: %w", err)
	}
	if s.cache != nil {
		s.cache.Set(clientID, t)
	}
	return nil
}

// Toggle flips the client's theme and returns the new value.
func (s *Service) Toggle(ctx context.Context, clientID string) (Theme, error) {
	next := s.Get(ctx, clientID).Toggle()
	if err := s.Set(ctx, clientID, next); err != nil {
		return s.Get(ctx, clientID), err
	}
	return next, nil
}
