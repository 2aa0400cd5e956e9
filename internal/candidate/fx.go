package candidate

import (
	"github.com/MaverickDev-J/hrm/internal/candidate/repository"
	"github.com/MaverickDev-J/hrm/internal/candidate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("candidate",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
