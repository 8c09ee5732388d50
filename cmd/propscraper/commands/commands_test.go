package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fortuna/propline/internal/config"
	"github.com/fortuna/propline/internal/export"
	"github.com/fortuna/propline/internal/service"
	"github.com/fortuna/propline/internal/store"
	"github.com/fortuna/propline/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})
	return ExecuteContext(context.Background()), out.String()
}

// resetFlags puts every flag of cmd and its subcommands back to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestSummarize(t *testing.T) {
	day := store.NewDate(2024, 1, 15)
	s := summarize([]store.PropRecord{
		{Player: "LeBron James", StatType: "Points", LineValue: 25.5, Matchup: "LAL @ GSW", Date: day},
		{Player: "LeBron James", StatType: "Assists", LineValue: 7.5, Matchup: "LAL @ GSW", Date: day},
		{Player: "Stephen Curry", StatType: "Points", LineValue: 27.5, Matchup: "GSW vs LAL", Date: day},
	})
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.UniquePlayers)
	assert.Equal(t, []string{"Assists", "Points"}, s.StatTypes)

	assert.Zero(t, summarize(nil).Total)
}

func TestPrintSummaryEmpty(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, &service.RunResult{Date: store.NewDate(2024, 1, 15), Strategy: "mock", Report: validate.Report{Dropped: 2}})
	assert.Contains(t, out.String(), "2024-01-15")
	assert.Contains(t, out.String(), "No valid props were found.")
}

func TestScrapeMock(t *testing.T) {
	dir := t.TempDir()
	code, out := execute(t, "--mock", "--output-dir", dir)
	require.Equal(t, ExitOK, code)

	files, err := filepath.Glob(filepath.Join(dir, "nba_props_*.csv"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	records, err := export.ReadProps(files[0])
	require.NoError(t, err)
	assert.Len(t, records, 5)

	assert.Contains(t, out, "Total props")
	assert.Contains(t, out, "LeBron James")
}

func TestScrapeUnwritableOutput(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, writeFile(blocker))

	code, _ := execute(t, "--mock", "--output-dir", filepath.Join(blocker, "out"))
	assert.Equal(t, ExitFailure, code)
}

func TestUnknownFlag(t *testing.T) {
	code, _ := execute(t, "--bogus")
	assert.Equal(t, ExitUsage, code)
}

func TestGameLogsMock(t *testing.T) {
	dir := t.TempDir()
	code, out := execute(t, "gamelogs", "LeBron James", "--mock", "--season", "2023-24", "--output-dir", dir)
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "GSW")
	assert.Contains(t, out, "36.4")

	files, err := filepath.Glob(filepath.Join(dir, "gamelogs_*.csv"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	records, err := export.ReadGameLogs(files[0])
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestGameLogsBatchKeepsGoing(t *testing.T) {
	code, out := execute(t, "gamelogs", "LeBron James", "NotAPlayer123", "--mock", "--season", "2023-24", "--no-save")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "NotAPlayer123")
	assert.Contains(t, out, "Player not found.")
}

func TestGameLogsBatchSkipsExportForUnknownPlayers(t *testing.T) {
	dir := t.TempDir()
	code, _ := execute(t, "gamelogs", "LeBron James", "NotAPlayer123", "--mock", "--season", "2023-24", "--output-dir", dir)
	require.Equal(t, ExitOK, code)

	files, err := filepath.Glob(filepath.Join(dir, "gamelogs_*.csv"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, filepath.Base(files[0]), "lebron")
}

func TestGameLogsLeavesFlagsUntouched(t *testing.T) {
	t.Setenv("PROPLINE_STATS_SEASON", "2022-23")

	code, _ := execute(t, "gamelogs", "LeBron James", "--mock", "--no-save")
	require.Equal(t, ExitOK, code)

	season, err := gameLogsCmd.Flags().GetString("season")
	require.NoError(t, err)
	assert.Empty(t, season, "the configured season must not be written back into the flag")
}

func TestListenAddr(t *testing.T) {
	cfg := &config.AppConfig{Server: config.ServerConfig{Addr: ":8080"}}
	assert.Equal(t, ":8080", listenAddr(serveCmd, cfg))

	require.NoError(t, serveCmd.Flags().Set("addr", ":9090"))
	t.Cleanup(func() { resetFlags(serveCmd) })
	assert.Equal(t, ":9090", listenAddr(serveCmd, cfg))

	cfg.Server.Addr = ":7070"
	assert.Equal(t, ":9090", listenAddr(serveCmd, cfg))
}

func TestGameLogsUnknownPlayer(t *testing.T) {
	code, _ := execute(t, "gamelogs", "NotAPlayer123", "--mock", "--no-save")
	assert.Equal(t, ExitFailure, code)
}

func writeFile(path string) error {
	return os.WriteFile(path, []byte("x"), 0o644)
}
