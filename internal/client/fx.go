package client

import (
	"github.com/MaverickDev-J/hrm/internal/client/repository"
	"github.com/MaverickDev-J/hrm/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
