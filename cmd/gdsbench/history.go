package main

import (
	"fmt"

	"github.com/fxnlabs/gds-bench/internal/config"
	"github.com/fxnlabs/gds-bench/internal/results"
	"github.com/urfave/cli/v2"
)

func historyCommand(cfg **config.Config) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded benchmark runs",
		Action: func(c *cli.Context) error {
			conf := *cfg

			store, err := results.Open(conf.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No recorded runs.")
				return nil
			}

			for i, run := range runs {
				status := "FAILED"
				if run.Verified {
					status = "PASSED"
				}
				fmt.Printf("%3d  %s  %s  %d B x%d  write %.2f GB/s  read %.2f GB/s  %s  [%s]\n",
					i+1, run.At.Format("2006-01-02 15:04:05"), run.Device,
					run.BufferSize, run.Iterations, run.WriteGBps, run.ReadGBps, status, run.Path)
			}
			return nil
		},
	}
}
