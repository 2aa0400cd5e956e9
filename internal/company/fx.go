package company

import (
	"github.com/MaverickDev-J/hrm/internal/company/repository"
	"github.com/MaverickDev-J/hrm/internal/company/service"
	"go.uber.org/fx"
)

var Module = fx.Module("company",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
