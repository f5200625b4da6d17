package main

import (
	"os"

	"github.com/sociallens/comment-collector/internal/app"
	"github.com/sociallens/comment-collector/pkg/logger"
	"go.uber.org/fx"
)

func main() {
	log := logger.New(logger.Opts{Env: os.Getenv("APP_ENV")})

	fxApp := fx.New(
		fx.Logger(log),
		app.Module,
	)

	// Run blocks until the one-shot batch shuts the app down, or until a
	// signal stops the scheduled mode.
	fxApp.Run()
}
