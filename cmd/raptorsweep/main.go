// Command raptorsweep runs a single range-RAPTOR sweep against a GTFS feed
// and prints, for each iteration of the result, how many stops it reached.
// It is a thin
// demonstration entrypoint: all configuration loading and CLI flag parsing
// lives here, separate from the pure search logic it wraps.
package main

import (
	"fmt"
	logger "log"
	"os"

	"github.com/ardanlabs/conf"
	"github.com/patrickbr/gtfsparser"

	"github.com/transitcore/raptor"
	"github.com/transitcore/raptor/internal/gtfsfixture"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "RAPTORSWEEP : ", logger.LstdFlags|logger.Lmicroseconds)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		GTFS struct {
			Path string `conf:"default:gtfs.zip"`
		}
		FromStop string
		Date     struct {
			Year  int `conf:"default:2026"`
			Month int `conf:"default:1"`
			Day   int `conf:"default:1"`
		}
		FromTime          int     `conf:"default:28800"`
		ToTime            int     `conf:"default:32400"`
		WalkSpeed         float64 `conf:"default:1.3"`
		MonteCarloDraws   int     `conf:"default:100"`
		BoardSlackSeconds int     `conf:"default:0"`
		ObserveHolidays   bool    `conf:"default:false"`
		Seed              int64   `conf:"default:1"`
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Runs one range-RAPTOR sweep over a GTFS feed and prints the stops reached per iteration"
	if err := conf.Parse(os.Args[1:], "RAPTORSWEEP", &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage("RAPTORSWEEP", &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString("RAPTORSWEEP", &cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Printf("main: Config :\n%v\n", out)

	feed := gtfsparser.NewFeed()
	if err := feed.Parse(cfg.GTFS.Path); err != nil {
		return fmt.Errorf("parsing gtfs feed %s: %w", cfg.GTFS.Path, err)
	}

	layer, stopIndex, err := gtfsfixture.BuildLayer(feed, cfg.ObserveHolidays)
	if err != nil {
		return fmt.Errorf("building transit layer: %w", err)
	}

	fromIdx, ok := stopIndex[cfg.FromStop]
	if !ok {
		return fmt.Errorf("access stop %q not found in feed", cfg.FromStop)
	}

	driver := &raptor.SweepDriver{
		Layer:       layer,
		AccessTimes: map[int]int{fromIdx: 1},
		Seed:        cfg.Seed,
	}

	req := raptor.ProfileRequest{
		FromTime:          cfg.FromTime,
		ToTime:            cfg.ToTime,
		Date:              raptor.ServiceDate{Year: cfg.Date.Year, Month: cfg.Date.Month, Day: cfg.Date.Day},
		WalkSpeed:         cfg.WalkSpeed,
		MonteCarloDraws:   cfg.MonteCarloDraws,
		BoardSlackSeconds: cfg.BoardSlackSeconds,
	}

	result, err := driver.Run(req)
	if err != nil {
		return fmt.Errorf("running sweep: %w", err)
	}

	log.Printf("main: %d iterations, %d search calls, %dms transit / %dms propagation\n",
		len(result.TimesAtTargetsEachIteration),
		result.Diagnostics.SearchCount,
		result.Diagnostics.TransitSearchMillis,
		result.Diagnostics.PropagationMillis,
	)
	for i, row := range result.TimesAtTargetsEachIteration {
		reached := 0
		for _, t := range row {
			if t != raptor.UNREACHED {
				reached++
			}
		}
		fmt.Printf("iteration %4d: %d/%d stops reached (averaged=%v)\n", i, reached, len(row), result.IncludeInAverages.IsSet(i))
	}

	return nil
}
