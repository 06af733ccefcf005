package main

import (
	"fmt"
	"os"

	"github.com/fxnlabs/gds-bench/internal/config"
	"github.com/fxnlabs/gds-bench/internal/logger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	var cfg *config.Config
	var zapLogger *zap.Logger
	var rootLogger *zap.Logger

	app := &cli.App{
		Name:  "gdsbench",
		Usage: "Benchmark direct transfers between device memory and storage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to the gdsbench config file",
				EnvVars: []string{"GDSBENCH_CONFIG"},
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			if path := c.String("config"); path != "" {
				cfg, err = config.LoadConfig(path)
				if err != nil {
					return err
				}
			} else {
				cfg = config.DefaultConfig()
			}
			zapLogger, err = logger.New(cfg.Logger.Verbosity)
			if err != nil {
				return err
			}
			rootLogger = zapLogger.Named("gdsbench")
			return nil
		},
		Commands: []*cli.Command{
			runCommand(&cfg, &rootLogger),
			historyCommand(&cfg),
		},
	}

	if err := app.Run(os.Args); err != nil {
		if rootLogger != nil {
			rootLogger.Fatal("failed to run app", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}
