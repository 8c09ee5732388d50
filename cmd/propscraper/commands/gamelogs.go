package commands

import (
	"fmt"
	"io"

	"github.com/fortuna/propline/internal/config"
	"github.com/fortuna/propline/internal/export"
	"github.com/fortuna/propline/internal/ingest/nbastats"
	"github.com/fortuna/propline/internal/logger"
	"github.com/fortuna/propline/internal/service"
	"github.com/fortuna/propline/internal/store"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	gameLogsCmd.Flags().String("season", "", "Season as YYYY-YY, defaults to the current one.")
	gameLogsCmd.Flags().Bool("no-save", false, "Print the tables without writing CSV files.")
	rootCmd.AddCommand(gameLogsCmd)
}

var gameLogsCmd = &cobra.Command{
	Use:   "gamelogs NAME...",
	Short: "Fetches per-game stat lines for one or more players.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		season, _ := cmd.Flags().GetString("season")
		if season == "" {
			season = cfg.Stats.Season
		}
		noSave, _ := cmd.Flags().GetBool("no-save")
		w := cmd.OutOrStdout()

		stats, err := newStatsService(cfg, log)
		if err != nil {
			return err
		}

		// A single player surfaces lookup errors; a batch never fails
		if len(args) == 1 {
			res, err := stats.FetchGameLogs(cmd.Context(), store.PlayerQuery{
				Name:    args[0],
				Season:  season,
				UseMock: cfg.Mock,
			})
			if err != nil {
				return err
			}
			return emitGameLogs(w, cfg, log, res.Player.FullName, res.Records, !noSave)
		}

		results := stats.GetMultiplePlayersGameLogs(cmd.Context(), args, season, cfg.Mock)
		seen := make(map[string]bool, len(args))
		for _, name := range args {
			if seen[name] {
				continue
			}
			seen[name] = true
			if _, ok := stats.FindPlayerByName(name); !ok {
				fmt.Fprintf(w, "%s\nPlayer not found.\n", name)
				continue
			}
			if err := emitGameLogs(w, cfg, log, name, results[name], !noSave); err != nil {
				return err
			}
		}
		return nil
	},
}

func newStatsService(cfg *config.AppConfig, log *logger.Logger) (*service.StatsService, error) {
	dir, err := nbastats.LoadDirectory()
	if err != nil {
		return nil, err
	}
	if cfg.Stats.PlayersFile != "" {
		players, err := nbastats.LoadDirectoryFile(cfg.Stats.PlayersFile)
		if err != nil {
			return nil, err
		}
		log.Debug("player directory loaded",
			zap.String("path", cfg.Stats.PlayersFile),
			zap.Int("added", dir.Merge(players)),
		)
	}

	var userAgent string
	if len(cfg.HTTP.UserAgents) > 0 {
		userAgent = cfg.HTTP.UserAgents[0]
	}
	client := nbastats.NewClient(nbastats.Options{
		BaseURL:   cfg.Stats.BaseURL,
		Timeout:   cfg.HTTP.Timeout,
		UserAgent: userAgent,
	}, log)

	return service.NewStatsService(dir, client, log), nil
}

func emitGameLogs(w io.Writer, cfg *config.AppConfig, log *logger.Logger, player string, records []store.GameLogRecord, save bool) error {
	printGameLogs(w, player, records)
	if !save {
		return nil
	}

	path, err := export.WriteGameLogs(cfg.OutputDir, player, store.Today(timeNow()), records)
	if err != nil {
		return err
	}
	log.Info("game logs exported", zap.String("player", player), zap.String("path", path), zap.Int("rows", len(records)))
	return nil
}

func printGameLogs(w io.Writer, player string, records []store.GameLogRecord) {
	fmt.Fprintln(w, player)
	if len(records) == 0 {
		fmt.Fprintln(w, "No games found.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Date", "Opp", "PTS", "AST", "REB", "MIN"})
	for _, r := range records {
		t.AppendRow(table.Row{r.Date.String(), r.Opponent, r.Points, r.Assists, r.Rebounds, r.Minutes})
	}
	t.Render()
}
