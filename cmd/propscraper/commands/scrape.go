package commands

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/fortuna/propline/internal/config"
	"github.com/fortuna/propline/internal/ingest/prizepicks"
	"github.com/fortuna/propline/internal/logger"
	"github.com/fortuna/propline/internal/publisher"
	"github.com/fortuna/propline/internal/service"
	"github.com/fortuna/propline/internal/store"
	"github.com/fortuna/propline/internal/store/repository"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const summaryRows = 10

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	props, cleanup := newPropsService(ctx, cfg, log)
	defer cleanup()

	res, err := props.Run(ctx, service.RunOptions{
		OutputDir: cfg.OutputDir,
		UseMock:   cfg.Mock,
		Strict:    cfg.Strict,
	})
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), res)
	return nil
}

// newPropsService wires the PrizePicks client, the optional headless browser
// and the configured sinks. Sinks that cannot connect are skipped with a
// warning.
func newPropsService(ctx context.Context, cfg *config.AppConfig, log *logger.Logger) (*service.PropsService, func()) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	client := prizepicks.NewClient(prizepicks.Options{
		BaseURL:     cfg.PrizePicks.BaseURL,
		Endpoints:   cfg.PrizePicks.APIEndpoints,
		UserAgents:  cfg.HTTP.UserAgents,
		Timeout:     cfg.HTTP.Timeout,
		PageTimeout: cfg.PrizePicks.PageTimeout,
	}, log)

	var fetcher prizepicks.PageFetcher
	if cfg.PrizePicks.Render && !cfg.Mock {
		chrome := prizepicks.NewChromeFetcher(client.NextUserAgent(), cfg.PrizePicks.PageTimeout, log)
		closers = append(closers, chrome.Close)
		fetcher = chrome
	}

	var sinks []service.PropSink
	if cfg.Redis.URL != "" {
		pub, err := publisher.Connect(ctx, cfg.Redis.URL, cfg.Redis.Stream, log)
		if err != nil {
			log.Warn("redis sink disabled", zap.Error(err))
		} else {
			closers = append(closers, func() { pub.Close() })
			sinks = append(sinks, pub)
		}
	}
	if cfg.Postgres.DSN != "" {
		if repo, closeDB, err := openPropsRepository(ctx, cfg.Postgres.DSN, log); err != nil {
			log.Warn("postgres sink disabled", zap.Error(err))
		} else {
			closers = append(closers, closeDB)
			sinks = append(sinks, repo)
		}
	}

	return service.NewPropsService(client, fetcher, log, sinks...), cleanup
}

func openPropsRepository(ctx context.Context, dsn string, log *logger.Logger) (*repository.PropsRepository, func(), error) {
	db, err := store.NewDatabase(ctx, dsn, log)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repository.NewPropsRepository(db), func() { db.Close() }, nil
}

// Summary describes an exported slate.
type Summary struct {
	Total         int
	UniquePlayers int
	StatTypes     []string
}

func summarize(records []store.PropRecord) Summary {
	players := make(map[string]bool)
	stats := make(map[string]bool)
	for _, r := range records {
		players[r.Player] = true
		stats[r.StatType] = true
	}

	s := Summary{Total: len(records), UniquePlayers: len(players)}
	for stat := range stats {
		s.StatTypes = append(s.StatTypes, stat)
	}
	sort.Strings(s.StatTypes)
	return s
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func printSummary(w io.Writer, res *service.RunResult) {
	s := summarize(res.Records)

	overview := newTable(w)
	overview.AppendRows([]table.Row{
		{"Date", res.Date.String()},
		{"Source", res.Strategy},
		{"Total props", s.Total},
		{"Dropped", res.Report.Dropped},
		{"Unique players", s.UniquePlayers},
		{"Stat types", len(s.StatTypes)},
		{"File", res.Path},
	})
	overview.Render()

	if len(res.Records) == 0 {
		fmt.Fprintln(w, "No valid props were found.")
		return
	}

	rows := newTable(w)
	rows.AppendHeader(table.Row{"Player", "Stat", "Line", "Matchup"})
	for i, r := range res.Records {
		if i == summaryRows {
			rows.AppendFooter(table.Row{fmt.Sprintf("... %d more", len(res.Records)-summaryRows)})
			break
		}
		rows.AppendRow(table.Row{r.Player, r.StatType, r.LineValue, r.Matchup})
	}
	rows.Render()
}
