package store

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RunJanitor sweeps rounds idle for longer than idle every interval until ctx is done.
func RunJanitor(ctx context.Context, st Store, every, idle time.Duration) {
	if every <= 0 || idle <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := st.Sweep(ctx, now.Add(-idle))
			if err != nil {
				log.Warn().Err(err).Msg("sweep sessions")
				continue
			}
			if n > 0 {
				log.Info().Int("removed", n).Int("active", st.Len()).Msg("reclaimed idle sessions")
			}
		}
	}
}
