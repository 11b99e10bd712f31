package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/smallbiznis/claimdesk/internal/config"
	"github.com/smallbiznis/claimdesk/internal/migration"
	"github.com/smallbiznis/claimdesk/internal/observability"
	"github.com/smallbiznis/claimdesk/internal/server"
	"github.com/smallbiznis/claimdesk/pkg/db"
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
