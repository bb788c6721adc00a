package internal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/scalesmith/internal/chord"
	"github.com/starford/scalesmith/internal/library"
	"github.com/starford/scalesmith/internal/scaleservice"
	"github.com/starford/scalesmith/internal/store"
)

// Services bundles the store, library and scale service built from a
// configuration. Both the server and the one-shot commands use it.
type Services struct {
	DB      *store.DB
	Library *library.FS
	Scales  *scaleservice.Service
}

// OpenServices opens the store, prepares the library directory and seeds the
// factory families into an empty store.
func OpenServices(ctx context.Context, cfg *Config) (*Services, error) {
	lib, err := library.NewFS(cfg.Library.Path, cfg.Library.Include)
	if err != nil {
		return nil, fmt.Errorf("init library: %w", err)
	}

	prefs, err := cfg.Chords.Preferences()
	if err != nil {
		return nil, fmt.Errorf("chord preferences: %w", err)
	}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	svc := scaleservice.NewService(db, lib, chord.NewMatcher(chord.Default()), prefs)
	if err := svc.Init(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed store: %w", err)
	}
	return &Services{DB: db, Library: lib, Scales: svc}, nil
}

// Sync imports the library into the store, logging instead of failing.
func (s *Services) Sync(logger *slog.Logger) {
	if err := library.Sync(s.DB, s.Library, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
}

// Close closes the store.
func (s *Services) Close() error {
	return s.DB.Close()
}
