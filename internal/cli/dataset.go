package cli

import (
	"context"
	"errors"
	"io/fs"

	"github.com/charmbracelet/log"

	"iptoasn/internal/asndb"
	"iptoasn/internal/refresh"
)

// loadIndex builds the dataset for one-shot commands: the cache file when
// one is present, the database URL otherwise. The successful source is also
// persisted, so repeated invocations stay off the network.
func loadIndex(ctx context.Context) (*asndb.Index, error) {
	store := asndb.NewStore()
	r := refresh.New(store, settings.DatabaseURL, settings.CacheFile)

	err := r.LoadCache()
	if err == nil {
		return store.Current(), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		log.Warn("dataset cache unusable, refetching", "error", err)
	}

	if err := r.Refresh(ctx); err != nil {
		return nil, err
	}
	return store.Current(), nil
}
