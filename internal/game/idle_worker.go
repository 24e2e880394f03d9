package game

import (
	"context"
	"log"
	"time"

	"github.com/playmatatu/pinball/internal/config"
)

// StartIdleWorker starts a background worker that closes tables nobody has
// sent input to for IdleTableMinutes.
func StartIdleWorker(ctx context.Context, m *TableManager, cfg *config.Config) {
	if m == nil || cfg == nil {
		log.Println("[IDLE] Manager or config missing; idle worker not started")
		return
	}
	if cfg.IdleTableMinutes <= 0 {
		log.Println("[IDLE] IDLE_TABLE_MINUTES <= 0; idle worker disabled")
		return
	}

	poll := idlePollInterval(cfg.IdleWorkerPollSeconds)
	log.Printf("[IDLE] Idle worker started (poll every %s)", poll)
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case <-ticker.C:
				reapIdleTables(m, time.Duration(cfg.IdleTableMinutes)*time.Minute)
			}
		}
	}()
}

// defaultIdlePoll is used when IDLE_WORKER_POLL_SECONDS is not positive.
const defaultIdlePoll = 30 * time.Second

func idlePollInterval(seconds int) time.Duration {
	if seconds <= 0 {
		log.Printf("[IDLE] IDLE_WORKER_POLL_SECONDS=%d is not positive; polling every %s", seconds, defaultIdlePoll)
		return defaultIdlePoll
	}
	return time.Duration(seconds) * time.Second
}

// reapIdleTables closes every table idle for longer than maxIdle and
// returns how many it closed.
func reapIdleTables(m *TableManager, maxIdle time.Duration) int {
	closed := 0
	for _, id := range m.IdleTables(time.Now().Add(-maxIdle)) {
		if err := m.CloseTable(id); err != nil {
			// Closed concurrently by its operator.
			continue
		}
		log.Printf("[IDLE] Closed table %s after %s without input", id, maxIdle)
		closed++
	}
	return closed
}
