package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTickInterval is the refresh cadence of a viewer.
const DefaultTickInterval = 2 * time.Second

// RunTicker calls tick every interval until ctx is done. Errors are logged and
// do not stop the loop.
func RunTicker(ctx context.Context, interval time.Duration, logger zerolog.Logger, tick func(context.Context) error) {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := tick(ctx); err != nil && ctx.Err() == nil {
				logger.Warn().Err(err).Msg("tick failed")
			}
		}
	}
}
