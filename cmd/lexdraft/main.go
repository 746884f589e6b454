package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/lexdraftlabs/lexdraft/internal/config"
	"github.com/lexdraftlabs/lexdraft/internal/migration"
	"github.com/lexdraftlabs/lexdraft/internal/observability"
	"github.com/lexdraftlabs/lexdraft/internal/server"
	"github.com/lexdraftlabs/lexdraft/pkg/db"
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
