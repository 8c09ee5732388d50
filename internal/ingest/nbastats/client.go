package nbastats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/propline/internal/ingest"
	"github.com/fortuna/propline/internal/logger"
	"github.com/fortuna/propline/internal/store"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	BaseURL           = "https://stats.nba.com/stats"
	DefaultTimeout    = 10 * time.Second
	SeasonTypeRegular = "Regular Season"
)

// stats.nba.com column headers this package reads.
const (
	colGameDate = "GAME_DATE"
	colMatchup  = "MATCHUP"
	colPoints   = "PTS"
	colAssists  = "AST"
	colRebounds = "REB"
	colMinutes  = "MIN"
)

var requiredColumns = []string{colGameDate, colMatchup, colPoints, colAssists, colRebounds, colMinutes}

// commonallplayers columns.
const (
	colPersonID     = "PERSON_ID"
	colDisplayName  = "DISPLAY_FIRST_LAST"
	colLastFirst    = "DISPLAY_LAST_COMMA_FIRST"
	colRosterStatus = "ROSTERSTATUS"
)

// ErrMalformedResponse is returned when a response lacks the game log table
// or one of its columns.
var ErrMalformedResponse = errors.New("malformed stats response")

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client reads player game logs from stats.nba.com. The site rejects
// requests that do not look like they come from nba.com, hence the headers.
type Client struct {
	http    *resty.Client
	baseURL string
	timeout time.Duration
	log     *logger.Logger
}

// NewClient creates a stats.nba.com client.
func NewClient(opts Options, log *logger.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = BaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}

	client := resty.New()
	client.SetRetryCount(0)
	client.SetHeaders(map[string]string{
		"User-Agent":         opts.UserAgent,
		"Accept":             "application/json, text/plain, */*",
		"Accept-Language":    "en-US,en;q=0.9",
		"Referer":            "https://www.nba.com/",
		"Origin":             "https://www.nba.com",
		"x-nba-stats-origin": "stats",
		"x-nba-stats-token":  "true",
	})

	return &Client{
		http:    client,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		timeout: opts.Timeout,
		log:     log.Named("nbastats"),
	}
}

type resultSet struct {
	Name    string          `json:"name"`
	Headers []string        `json:"headers"`
	RowSet  [][]interface{} `json:"rowSet"`
}

type gameLogResponse struct {
	ResultSets []resultSet `json:"resultSets"`
}

// PlayerGameLog fetches a player's regular season game log. A season with no
// games played returns an empty slice and no error.
func (c *Client) PlayerGameLog(ctx context.Context, playerID int, season string) ([]ingest.RawGameLog, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + "/playergamelog"
	c.log.Debug("fetching game log",
		zap.Int("player_id", playerID),
		zap.String("season", season),
	)

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"PlayerID":   strconv.Itoa(playerID),
			"Season":     season,
			"SeasonType": SeasonTypeRegular,
		}).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("GET %s: status %d", url, res.StatusCode())
	}

	var decoded gameLogResponse
	if err := json.Unmarshal(res.Body(), &decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return parseGameLog(decoded)
}

// AllPlayers fetches every player stats.nba.com knows about, current and
// historical, as of season.
func (c *Client) AllPlayers(ctx context.Context, season string) ([]store.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + "/commonallplayers"
	c.log.Debug("fetching player list", zap.String("season", season))

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"LeagueID":            "00",
			"Season":              season,
			"IsOnlyCurrentSeason": "0",
		}).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("GET %s: status %d", url, res.StatusCode())
	}

	var decoded gameLogResponse
	if err := json.Unmarshal(res.Body(), &decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return parsePlayers(decoded)
}

func parsePlayers(resp gameLogResponse) ([]store.Player, error) {
	if len(resp.ResultSets) == 0 {
		return nil, fmt.Errorf("%w: no result sets", ErrMalformedResponse)
	}
	set := resp.ResultSets[0]

	index := make(map[string]int, len(set.Headers))
	for i, h := range set.Headers {
		index[strings.ToUpper(h)] = i
	}
	for _, col := range []string{colPersonID, colDisplayName} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrMalformedResponse, col)
		}
	}

	players := make([]store.Player, 0, len(set.RowSet))
	for _, row := range set.RowSet {
		get := func(col string) string {
			if idx, ok := index[col]; ok && idx < len(row) {
				return cell(row[idx])
			}
			return ""
		}
		id, err := strconv.Atoi(get(colPersonID))
		if err != nil || id <= 0 {
			continue
		}
		name := strings.TrimSpace(get(colDisplayName))
		if name == "" {
			continue
		}

		p := store.Player{ID: id, FullName: name, IsActive: get(colRosterStatus) == "1"}
		if last, first, ok := strings.Cut(get(colLastFirst), ","); ok {
			p.FirstName, p.LastName = strings.TrimSpace(first), strings.TrimSpace(last)
		} else if first, last, ok := strings.Cut(name, " "); ok {
			p.FirstName, p.LastName = first, last
		}
		players = append(players, p)
	}
	return players, nil
}

// parseGameLog maps the first result set by header name rather than by
// position, so added or reordered columns do not break it.
func parseGameLog(resp gameLogResponse) ([]ingest.RawGameLog, error) {
	if len(resp.ResultSets) == 0 {
		return nil, fmt.Errorf("%w: no result sets", ErrMalformedResponse)
	}
	set := resp.ResultSets[0]

	statIndexMap := make(map[string]int, len(set.Headers))
	for i, h := range set.Headers {
		statIndexMap[strings.ToUpper(h)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := statIndexMap[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrMalformedResponse, col)
		}
	}

	logs := make([]ingest.RawGameLog, 0, len(set.RowSet))
	for _, row := range set.RowSet {
		getStat := func(col string) string {
			if idx := statIndexMap[col]; idx < len(row) {
				return cell(row[idx])
			}
			return ""
		}
		logs = append(logs, ingest.RawGameLog{
			Source:   SourceAPI,
			GameDate: getStat(colGameDate),
			Matchup:  getStat(colMatchup),
			Points:   getStat(colPoints),
			Assists:  getStat(colAssists),
			Rebounds: getStat(colRebounds),
			Minutes:  getStat(colMinutes),
		})
	}
	return logs, nil
}

func cell(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}
