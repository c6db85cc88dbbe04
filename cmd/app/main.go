package main

import (
	"openrun/config"
	"openrun/di"
	"openrun/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	app := di.InitializeService()

	app.Engine.Start()
	defer app.Engine.Stop()

	app.HTTP.Serve()
}
