package main

import (
	"fmt"
	"net/http"

	"github.com/common-nighthawk/go-figure"
	"github.com/fxnlabs/gds-bench/internal/bench"
	"github.com/fxnlabs/gds-bench/internal/config"
	"github.com/fxnlabs/gds-bench/internal/gds"
	"github.com/fxnlabs/gds-bench/internal/results"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func runCommand(cfg **config.Config, log **zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the transfer benchmark",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "file",
				Usage: "Target file path (overrides config)",
			},
			&cli.Int64Flag{
				Name:  "size",
				Usage: "Transfer buffer size in bytes (overrides config)",
			},
			&cli.UintFlag{
				Name:  "pattern",
				Usage: "Fill pattern byte (overrides config)",
			},
			&cli.IntFlag{
				Name:  "iterations",
				Usage: "Number of write/read pairs (overrides config)",
			},
		},
		Action: func(c *cli.Context) error {
			conf, rootLogger := *cfg, *log

			figure.NewFigure("gdsbench", "", true).Print()

			opts := bench.Options{
				Path:       conf.Target.Path,
				BufferSize: conf.Transfer.BufferSize,
				Pattern:    conf.Transfer.PatternByte,
				Iterations: conf.Transfer.Iterations,
			}
			if v := c.String("file"); v != "" {
				opts.Path = v
			}
			if v := c.Int64("size"); v != 0 {
				opts.BufferSize = v
			}
			if c.IsSet("pattern") {
				opts.Pattern = byte(c.Uint("pattern"))
			}
			if v := c.Int("iterations"); v != 0 {
				opts.Iterations = v
			}

			if addr := conf.Metrics.ListenAddress; addr != "" {
				go func() {
					mux := http.NewServeMux()
					mux.Handle("/metrics", promhttp.Handler())
					if err := http.ListenAndServe(addr, mux); err != nil {
						rootLogger.Warn("metrics server stopped", zap.Error(err))
					}
				}()
				rootLogger.Info("serving metrics", zap.String("address", addr))
			}

			backend, driver := gds.NewBackend(rootLogger)

			report, err := bench.Run(backend, driver, opts, rootLogger)
			if err != nil {
				rootLogger.Error("benchmark failed", zap.Error(err))
				return err
			}

			printReport(report)
			recordRun(conf.History.Path, report, rootLogger)
			return nil
		},
	}
}

func printReport(report *bench.Report) {
	for i := range report.Writes {
		w, r := report.Writes[i], report.Reads[i]
		fmt.Printf("WRITE  %.2f MB in %.2f ms  (%.2f GB/s)\n", w.Megabytes(), w.Millis(), w.Bandwidth)
		fmt.Printf("READ   %.2f MB in %.2f ms  (%.2f GB/s)\n", r.Megabytes(), r.Millis(), r.Bandwidth)
	}
	if report.Verified {
		fmt.Printf("Verification PASSED (all bytes 0x%02X).\n", report.Pattern)
	}
	if len(report.Writes) > 1 {
		fmt.Printf("AVG    write %.2f ± %.2f GB/s, read %.2f ± %.2f GB/s over %d iterations\n",
			report.WriteGBps, report.WriteGBpsSigma, report.ReadGBps, report.ReadGBpsSigma, len(report.Writes))
	}
}

func recordRun(historyPath string, report *bench.Report, log *zap.Logger) {
	store, err := results.Open(historyPath)
	if err != nil {
		log.Warn("failed to open history store", zap.Error(err))
		return
	}
	defer store.Close()

	run := results.Run{
		At:          report.StartedAt,
		Device:      report.Device.Name,
		Path:        report.Path,
		BufferSize:  report.BufferSize,
		PatternByte: report.Pattern,
		Iterations:  len(report.Writes),
		WriteGBps:   report.WriteGBps,
		ReadGBps:    report.ReadGBps,
		Verified:    report.Verified,
	}
	if err := store.Append(run); err != nil {
		log.Warn("failed to record run", zap.Error(err))
	}
}
