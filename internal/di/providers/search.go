package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/shelfieapp/shelfie-server/internal/config"
	"github.com/shelfieapp/shelfie-server/internal/logger"
	"github.com/shelfieapp/shelfie-server/internal/search"
	"github.com/shelfieapp/shelfie-server/internal/service"
)

// SearchIndexHandle wraps the user search index with shutdown capability.
type SearchIndexHandle struct {
	*search.UserIndex
	// Rebuilt is true when the index was created empty on this start.
	Rebuilt bool
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve user index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, rebuilt, err := search.Open(search.Options{
		DataPath: cfg.Storage.SearchPath(),
		Logger:   log.Component("search"),
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount, "rebuilt", rebuilt)

	return &SearchIndexHandle{UserIndex: index, Rebuilt: rebuilt}, nil
}

// TriggerSearchReindexIfNeeded repopulates a freshly created index from the
// store in the background. Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	userService := do.MustInvoke[*service.UserService](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if !indexHandle.Rebuilt && docCount > 0 {
		return
	}

	ctx := context.Background()
	usernames, err := storeHandle.ListUsernames(ctx)
	if err != nil || len(usernames) == 0 {
		return
	}

	log.Info("Search index is empty but users exist, triggering reindex",
		"user_count", len(usernames),
	)

	go func() {
		if err := userService.RebuildIndex(context.Background()); err != nil {
			log.Error("Search reindex failed", "error", err)
			return
		}
		count, _ := indexHandle.DocumentCount()
		log.Info("Search reindex completed", "documents", count)
	}()
}
