package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/giovaniif/coffee-machine/cmd/api"
	"github.com/giovaniif/coffee-machine/config"
	"github.com/giovaniif/coffee-machine/infra/logging"
	"github.com/giovaniif/coffee-machine/infra/loki"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}

	lokiWriter := loki.NewWriter(cfg.LokiURL, cfg.ServiceName)
	if lokiWriter != nil {
		defer lokiWriter.Close()
	}
	logger, err := logging.New(cfg.LogLevel, lokiWriter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 2
	}
	defer logger.Sync()

	if err := api.StartServer(cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return 1
	}
	return 0
}
