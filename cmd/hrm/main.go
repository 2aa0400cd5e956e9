package main

import (
	"github.com/MaverickDev-J/hrm/internal/config"
	"github.com/MaverickDev-J/hrm/internal/migration"
	"github.com/MaverickDev-J/hrm/internal/observability"
	"github.com/MaverickDev-J/hrm/internal/server"
	"github.com/MaverickDev-J/hrm/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
