package storage

import (
	"github.com/MaverickDev-J/hrm/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("storage",
	fx.Provide(newStore),
)

func newStore(cfg config.Config) (Store, error) {
	return NewLocal(cfg.StorageRoot)
}
