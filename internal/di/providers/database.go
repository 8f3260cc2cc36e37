package providers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/do/v2"

	"github.com/shelfieapp/shelfie-server/internal/config"
	"github.com/shelfieapp/shelfie-server/internal/eventbus"
	"github.com/shelfieapp/shelfie-server/internal/logger"
	"github.com/shelfieapp/shelfie-server/internal/sse"
	"github.com/shelfieapp/shelfie-server/internal/store"
	"github.com/shelfieapp/shelfie-server/internal/store/badgerdb"
	"github.com/shelfieapp/shelfie-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Component("sse"))

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// EventBusHandle wraps the event bus and the goroutine relaying remote events.
type EventBusHandle struct {
	eventbus.Bus
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *EventBusHandle) Shutdown() error {
	h.cancel()
	return h.Close()
}

// ProvideEventBus provides the event bus services emit to. With a Redis URL
// configured events fan out to every instance; otherwise they go straight to
// the local SSE manager.
func ProvideEventBus(i do.Injector) (*EventBusHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	ctx, cancel := context.WithCancel(context.Background())

	var bus eventbus.Bus = eventbus.NewLocal(sseHandle.Manager)
	if cfg.Redis.Enabled() {
		connectCtx, connectCancel := context.WithTimeout(ctx, shutdownTimeout)
		redisBus, err := eventbus.NewRedis(connectCtx, cfg.Redis.URL, cfg.Redis.Channel, uuid.NewString(), sseHandle.Manager, log.Component("eventbus"))
		connectCancel()
		if err != nil {
			cancel()
			return nil, err
		}
		bus = redisBus
	}

	go func() {
		if err := bus.Run(ctx); err != nil {
			log.Error("Event bus stopped", "error", err)
		}
	}()

	return &EventBusHandle{Bus: bus, cancel: cancel}, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the document store selected by the storage driver.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := cfg.Storage.DatabasePath()
	st, err := OpenStore(cfg.Storage.Driver, path, log)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "driver", cfg.Storage.Driver, "path", path)

	return &StoreHandle{Store: st}, nil
}

// OpenStore opens the store for driver at path.
func OpenStore(driver, path string, log *logger.Logger) (store.Store, error) {
	switch driver {
	case config.DriverSQLite:
		return sqlite.Open(path, log.Component("sqlite"))
	case config.DriverBadger:
		return badgerdb.Open(path, log.Component("badger"))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
