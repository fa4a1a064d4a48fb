package app

import (
	"os"
	"strings"

	"github.com/fluxclass/fluxclass-backend/internal/pkg/logger"
	"github.com/fluxclass/fluxclass-backend/internal/realtime/bus"
	"github.com/fluxclass/fluxclass-backend/internal/realtime/seen"
)

type Clients struct {
	Bus       bus.Bus
	SeenStore seen.Store
}

// wireClients connects the redis-backed realtime pieces, falling back to the
// in-process implementations when no REDIS_ADDR is configured. Single-node
// deployments and tests run without redis at all.
func wireClients(log *logger.Logger) Clients {
	log.Info("Wiring clients...")

	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) == "" {
		log.Warn("REDIS_ADDR not set, using in-process bus and seen store")
		return Clients{Bus: bus.NewMemoryBus(), SeenStore: seen.NewMemoryStore()}
	}

	eventBus, err := bus.NewRedisBus(log)
	if err != nil {
		log.Warn("redis bus unavailable, using in-process bus", "error", err)
		eventBus = bus.NewMemoryBus()
	}
	seenStore, err := seen.NewRedisStore(log)
	if err != nil {
		log.Warn("redis seen store unavailable, using in-process store", "error", err)
		seenStore = seen.NewMemoryStore()
	}
	return Clients{Bus: eventBus, SeenStore: seenStore}
}
