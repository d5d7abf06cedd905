// Package main provides the entry point for the Pastaboard web service
package main

import (
	"flag"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/pastaboard/pastaboard/internal/infrastructure/container"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: ./config.yaml, ./config/config.yaml or /etc/pastaboard/config.yaml)")
	flag.Parse()

	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Supply(container.ConfigPath(*configPath)),
		container.Module,
	)

	app.Run()
}
