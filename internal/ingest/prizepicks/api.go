package prizepicks

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fortuna/propline/internal/ingest"
	"github.com/fortuna/propline/internal/store"
)

// ParseAPIResponse extracts raw props from a projections endpoint body.
//
// Supported shapes are JSON:API documents (data[] with included new_player
// and league resources), objects wrapping a list under data, projections or
// results, bare lists, and single projection objects. A body that turns out
// to be an HTML page is handed to ParseHTML.
//
// Records without a date of their own are stamped with day, the slate the
// endpoint was queried for.
func ParseAPIResponse(body []byte, day store.Date) ([]ingest.RawProp, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, ingest.ErrNoRecords
	}
	if body[0] == '<' {
		return ParseHTML(string(body), day)
	}

	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decoding projections: %w", err)
	}

	var (
		items    []map[string]interface{}
		included map[string]map[string]interface{}
	)
	switch v := decoded.(type) {
	case []interface{}:
		items = objects(v)
	case map[string]interface{}:
		items = projectionItems(v)
		included = indexIncluded(extractArray(v, "included"))
	}

	// Incomplete projections are kept; the validator reports what they lack.
	props := make([]ingest.RawProp, 0, len(items))
	for _, item := range items {
		var raw ingest.RawProp
		if attrs, isResource := item["attributes"].(map[string]interface{}); isResource {
			if t := extractString(item, "type"); t != "" && t != "projection" {
				continue
			}
			raw = fromResource(item, attrs, included)
		} else {
			raw = fromFlat(item)
			if raw.Player == "" && raw.StatType == "" && raw.Line == "" {
				continue
			}
		}
		raw.Source = SourceAPI
		if raw.Date == "" {
			raw.Date = day.String()
		}
		props = append(props, raw)
	}
	return props, nil
}

func projectionItems(doc map[string]interface{}) []map[string]interface{} {
	for _, key := range []string{"data", "projections", "results"} {
		v, ok := doc[key]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case []interface{}:
			return objects(val)
		case map[string]interface{}:
			return []map[string]interface{}{val}
		}
		return nil
	}
	return []map[string]interface{}{doc}
}

// indexIncluded keys JSON:API included resources by "type:id".
func indexIncluded(arr []interface{}) map[string]map[string]interface{} {
	index := make(map[string]map[string]interface{}, len(arr))
	for _, res := range objects(arr) {
		index[extractString(res, "type")+":"+extractString(res, "id")] = res
	}
	return index
}

// related returns the attributes of the included resource a relationship points to.
func related(included map[string]map[string]interface{}, rels map[string]interface{}, name string) map[string]interface{} {
	ref := extractMap(extractMap(rels, name), "data")
	typ := fallbackString(extractString(ref, "type"), name)
	if res, ok := included[typ+":"+extractString(ref, "id")]; ok {
		return extractMap(res, "attributes")
	}
	return map[string]interface{}{}
}

func fromResource(item, attrs map[string]interface{}, included map[string]map[string]interface{}) ingest.RawProp {
	rels := extractMap(item, "relationships")
	player := related(included, rels, "new_player")
	if len(player) == 0 {
		player = related(included, rels, "player")
	}
	league := related(included, rels, "league")

	raw := ingest.RawProp{
		Player:   fallbackString(firstString(player, "display_name", "name"), firstString(attrs, "player_name", "name")),
		StatType: firstString(attrs, "stat_type", "stat_display_name"),
		Line:     firstString(attrs, "line_score", "line"),
		League:   fallbackString(firstString(league, "name"), firstString(player, "league")),
		Date:     firstString(attrs, "start_time", "game_date"),
	}

	// description carries the opponent code on PrizePicks boards
	team := firstString(player, "team", "team_name")
	if opp := extractString(attrs, "description"); team != "" && opp != "" {
		raw.Matchup = team + " vs " + opp
	}

	return raw
}

func fromFlat(p map[string]interface{}) ingest.RawProp {
	return ingest.RawProp{
		Player:   firstString(p, "player_name", "name", "player"),
		StatType: firstString(p, "stat_type", "category", "market"),
		Line:     firstString(p, "line", "value", "projection"),
		Matchup:  extractMatchup(p),
		League:   firstString(p, "sport", "league"),
		Date:     firstString(p, "date", "game_date", "start_time"),
	}
}

func extractMatchup(p map[string]interface{}) string {
	for _, field := range []string{"matchup", "game", "teams", "fixture"} {
		switch v := p[field].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]interface{}:
			home := firstString(v, "home", "home_team")
			away := firstString(v, "away", "away_team")
			if home != "" && away != "" {
				return away + " @ " + home
			}
		}
	}

	team := firstString(p, "team", "player_team")
	opponent := firstString(p, "opponent", "opposing_team")
	if team != "" && opponent != "" {
		return team + " vs " + opponent
	}
	return fallbackString(opponent, team)
}
