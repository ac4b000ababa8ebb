package boardcli

import (
	"context"

	"github.com/okian/scoreview/internal/adapters/scoreapi"
	service "github.com/okian/scoreview/internal/app"
	"github.com/okian/scoreview/internal/domain/model"
	"golang.org/x/sync/errgroup"
)

// snapshot is a contest configuration plus data loaded at one time.
type snapshot[T any] struct {
	cfg        model.ContestConfig
	data       T
	relativeMs int64
}

// loadAt fetches the contest configuration and the data load returns. When
// --t is given both calls run concurrently; a --at position or no time flag
// needs the contest window first.
func loadAt[T any](ctx context.Context, b service.Backend, c *Config, path string,
	load func(ctx context.Context, t *int64) (T, error),
) (snapshot[T], error) {
	var snap snapshot[T]

	if !c.explicitTime() {
		cfg, err := b.Config(ctx, path, nil)
		if err != nil {
			return snap, err
		}
		snap.cfg = cfg
		snap.relativeMs = c.relativeMs(cfg.Window())
		snap.data, err = load(ctx, scoreapi.Time(snap.relativeMs))
		return snap, err
	}

	t := scoreapi.Time(c.T)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cfg, err := b.Config(gctx, path, nil)
		snap.cfg = cfg
		return err
	})
	g.Go(func() error {
		data, err := load(gctx, t)
		snap.data = data
		return err
	})
	if err := g.Wait(); err != nil {
		return snap, err
	}
	snap.relativeMs = c.relativeMs(snap.cfg.Window())
	return snap, nil
}
