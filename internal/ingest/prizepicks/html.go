package prizepicks

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fortuna/propline/internal/ingest"
	"github.com/fortuna/propline/internal/store"
)

// cardTerms mark elements that may hold a single projection.
var cardTerms = []string{"prop", "projection", "pick", "player"}

var (
	playerSelectors  = []string{"[class*='player-name']", "[class*='playerName']", "[data-testid*='player']", "[class*='name']"}
	statSelectors    = []string{"[class*='stat-type']", "[class*='statType']", "[class*='stat']", "[class*='market']", "[class*='category']"}
	lineSelectors    = []string{"[class*='line-score']", "[class*='line']", "[class*='score']", "[class*='value']"}
	matchupSelectors = []string{"[class*='matchup']", "[class*='opponent']", "[class*='game']", "[class*='teams']"}
)

var (
	// "LeBron James 25.5 Points LAL @ GSW"
	cardTextPattern = regexp.MustCompile(`^(.*?\S)\s+(\d+(?:\.\d+)?)\s+(.+?)(?:\s+[A-Z]{2,4}\s*(?:@|vs\.?|at)\s*[A-Z]{2,4}\b.*)?$`)
	matchupText     = regexp.MustCompile(`\b[A-Z]{2,4}\s*(?:@|vs\.?|at)\s*[A-Z]{2,4}\b`)
	// trailing capitalized words make up the player's name
	nameTail = regexp.MustCompile(`(?:[A-Z][\p{L}.'\-]*\s+)*[A-Z][\p{L}.'\-]*$`)
)

type card struct {
	sel      *goquery.Selection
	raw      ingest.RawProp
	complete bool
}

// ParseHTML extracts raw props from a PrizePicks page. Each div, article or
// section whose class mentions a prop, projection, pick or player is read as
// a card. Cards wrapping a complete card are skipped, as are partial cards
// inside a complete one. Other partial cards are returned as they are.
func ParseHTML(page string, day store.Date) ([]ingest.RawProp, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var found []card
	doc.Find("div[class], article[class], section[class]").Each(func(_ int, s *goquery.Selection) {
		if !isCard(s) {
			return
		}
		raw := parseCard(s, day)
		if raw.Player == "" && raw.StatType == "" && raw.Line == "" {
			return
		}
		found = append(found, card{sel: s, raw: raw, complete: raw.Player != "" && raw.StatType != "" && raw.Line != ""})
	})

	cards := keep(found, func(c card) bool { return !containsAny(c, found, true) })
	cards = keep(cards, func(c card) bool { return c.complete || !insideAny(c, cards, true) })
	cards = keep(cards, func(c card) bool { return c.complete || !containsAny(c, cards, false) })

	props := make([]ingest.RawProp, 0, len(cards))
	for _, c := range cards {
		props = append(props, c.raw)
	}
	return props, nil
}

func keep(cards []card, pred func(card) bool) []card {
	out := make([]card, 0, len(cards))
	for _, c := range cards {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}

// containsAny reports whether c wraps another card, or another complete card
// when completeOnly is set.
func containsAny(c card, cards []card, completeOnly bool) bool {
	for _, other := range cards {
		if completeOnly && !other.complete {
			continue
		}
		if other.sel.Get(0) != c.sel.Get(0) && c.sel.Contains(other.sel.Get(0)) {
			return true
		}
	}
	return false
}

func insideAny(c card, cards []card, completeOnly bool) bool {
	for _, other := range cards {
		if completeOnly && !other.complete {
			continue
		}
		if other.sel.Get(0) != c.sel.Get(0) && other.sel.Contains(c.sel.Get(0)) {
			return true
		}
	}
	return false
}

func isCard(s *goquery.Selection) bool {
	class := strings.ToLower(s.AttrOr("class", ""))
	for _, term := range cardTerms {
		if strings.Contains(class, term) {
			return true
		}
	}
	return false
}

func parseCard(s *goquery.Selection, day store.Date) ingest.RawProp {
	raw := ingest.RawProp{
		Source:   SourceHTML,
		Player:   fallbackString(s.AttrOr("data-player", ""), firstText(s, playerSelectors)),
		StatType: fallbackString(s.AttrOr("data-stat", ""), firstText(s, statSelectors)),
		Line:     fallbackString(s.AttrOr("data-line", ""), firstText(s, lineSelectors)),
		Matchup:  fallbackString(s.AttrOr("data-matchup", ""), firstText(s, matchupSelectors)),
		League:   s.AttrOr("data-league", ""),
		Date:     s.Find("time[datetime]").First().AttrOr("datetime", ""),
	}

	text := spacedText(s)
	if raw.Player == "" || raw.StatType == "" || raw.Line == "" {
		if m := cardTextPattern.FindStringSubmatch(text); m != nil {
			raw.Player = fallbackString(raw.Player, nameTail.FindString(m[1]))
			raw.Line = fallbackString(raw.Line, m[2])
			raw.StatType = fallbackString(raw.StatType, m[3])
		}
	}
	if raw.Matchup == "" {
		raw.Matchup = matchupText.FindString(text)
	}
	if raw.Date == "" {
		raw.Date = day.String()
	}

	return raw
}

func firstText(s *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if t := spacedText(s.Find(sel).First()); t != "" {
			return t
		}
	}
	return ""
}

// spacedText joins the text nodes under s with single spaces, so that
// adjacent elements do not run together.
func spacedText(s *goquery.Selection) string {
	var parts []string
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			parts = append(parts, c.Text())
			return
		}
		parts = append(parts, spacedText(c))
	})
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
