// Command covid-jp-lambda runs one pipeline job per invocation.
//
// The event selects the job:
//
//	{"job": "summary", "yesterday": true, "commit": true}
//	{"job": "batch", "date": "2020-12-19", "prefecture": "Tokyo"}
//	{"job": "port" | "recoveries" | "verify", "commit": false}
//
// Configuration is read from the same environment variables as the CLI.
// DATA_DIR defaults to /tmp, the only writable path on Lambda.
package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/pfrederiksen/covid-jp-sync/internal/app"
	"github.com/pfrederiksen/covid-jp-sync/internal/config"
	"github.com/pfrederiksen/covid-jp-sync/internal/logger"
)

const lambdaDataDir = "/tmp/covid-jp-sync"

var (
	once     sync.Once
	instance *app.App
	log      *zap.Logger
	initErr  error
)

// setup builds the app once per container.
func setup(ctx context.Context) (*app.App, *zap.Logger, error) {
	once.Do(func() {
		var cfg *config.Config
		cfg, initErr = config.Load()
		if initErr != nil {
			return
		}
		if os.Getenv("DATA_DIR") == "" {
			cfg.DataDir = lambdaDataDir
		}
		log, initErr = logger.FromString(cfg.LogLevel, os.Stdout)
		if initErr != nil {
			return
		}
		instance, initErr = app.Build(ctx, cfg, log)
	})
	return instance, log, initErr
}

// Handler is the Lambda entry point.
func Handler(ctx context.Context, event Event) (Response, error) {
	a, log, err := setup(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("initializing: %w", err)
	}
	return handle(ctx, a.Service, log, event)
}

func main() {
	lambda.Start(Handler)
}
