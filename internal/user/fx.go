package user

import (
	"github.com/MaverickDev-J/hrm/internal/user/repository"
	"github.com/MaverickDev-J/hrm/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
