package invoice

import (
	"github.com/MaverickDev-J/hrm/internal/invoice/aggregate"
	"github.com/MaverickDev-J/hrm/internal/invoice/render"
	"github.com/MaverickDev-J/hrm/internal/invoice/repository"
	"github.com/MaverickDev-J/hrm/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice",
	fx.Provide(
		repository.Provide,
		aggregate.New,
		render.New,
		service.New,
	),
)
