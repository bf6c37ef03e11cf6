package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/woodshed-app/woodshed/internal/bridge"
	"github.com/woodshed-app/woodshed/internal/config"
	"github.com/woodshed-app/woodshed/internal/domain"
	"github.com/woodshed-app/woodshed/internal/store"
)

// host bundles the pieces every subcommand needs: configuration, the
// local store, and a core hydrated from it.
type host struct {
	cfg   config.Config
	store *store.Store
	core  *bridge.Core
}

// openHost loads configuration, opens the local store, and hydrates a
// fresh core from the persisted collections.
func openHost(ctx context.Context, opts *RootOptions) (*host, error) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open store", err)
	}

	core := bridge.New()
	if err := hydrate(ctx, core, s); err != nil {
		s.Close()
		return nil, WrapExitError(ExitCommandError, "hydrate core", err)
	}
	return &host{cfg: cfg, store: s, core: core}, nil
}

func (h *host) Close() error {
	return h.store.Close()
}

func hydrate(ctx context.Context, core *bridge.Core, s *store.Store) error {
	goals, err := s.LoadGoals(ctx)
	if err != nil {
		return err
	}
	studies, err := s.LoadStudies(ctx)
	if err != nil {
		return err
	}
	sessions, err := s.LoadSessions(ctx)
	if err != nil {
		return err
	}
	core.Engine().Hydrate(goals, studies, sessions)
	return nil
}

// persist writes the core's collections back to the local store.
func (h *host) persist(ctx context.Context) error {
	e := h.core.Engine()
	if err := h.store.SaveGoals(ctx, e.Goals()); err != nil {
		return err
	}
	if err := h.store.SaveStudies(ctx, e.Studies()); err != nil {
		return err
	}
	return h.store.SaveSessions(ctx, e.Sessions())
}

// dispatch sends one event over the bytes boundary, the way an embedded
// front-end would.
func (h *host) dispatch(ev domain.Event) ([]domain.Effect, error) {
	eventBytes, err := domain.MarshalEvent(ev)
	if err != nil {
		return nil, err
	}
	effectBytes, err := h.core.ProcessEvent(eventBytes)
	if err != nil {
		return nil, err
	}
	return domain.UnmarshalEffects(effectBytes)
}
