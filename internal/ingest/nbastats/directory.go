package nbastats

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/antzucaro/matchr"
	"github.com/fortuna/propline/internal/store"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

//go:embed players.json
var playersJSON []byte

// ErrPlayerNotFound means the name is not in the static directory. It is
// never answered with mock data.
var ErrPlayerNotFound = errors.New("player not found")

// minSuggestionScore is the Jaro-Winkler similarity below which no
// suggestion is offered.
const minSuggestionScore = 0.85

// PlayerNotFoundError carries the closest known name, if any.
type PlayerNotFoundError struct {
	Name       string
	Suggestion string
}

func (e *PlayerNotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("player %q not found (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("player %q not found", e.Name)
}

func (e *PlayerNotFoundError) Unwrap() error { return ErrPlayerNotFound }

// Directory is the static player directory. Lookups never touch the network;
// callers may Merge a fuller list into it at any time.
type Directory struct {
	mu      sync.RWMutex
	players []store.Player
	byName  map[string]store.Player
}

// LoadDirectory reads the embedded directory.
func LoadDirectory() (*Directory, error) {
	players, err := decodePlayers(playersJSON)
	if err != nil {
		return nil, err
	}
	return NewDirectory(players), nil
}

// LoadDirectoryFile reads a player list in the same JSON form as the
// embedded one, such as nba_api's static players export.
func LoadDirectoryFile(path string) ([]store.Player, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading player directory: %w", err)
	}
	return decodePlayers(data)
}

func decodePlayers(data []byte) ([]store.Player, error) {
	var players []store.Player
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("decoding player directory: %w", err)
	}
	return players, nil
}

// NewDirectory indexes players by folded full name. On duplicate names the
// first entry wins.
func NewDirectory(players []store.Player) *Directory {
	d := &Directory{byName: make(map[string]store.Player, len(players))}
	d.Merge(players)
	return d
}

// Merge adds players whose names are not yet known and returns how many
// were added.
func (d *Directory) Merge(players []store.Player) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	added := 0
	for _, p := range players {
		key := foldName(p.FullName)
		if key == "" {
			continue
		}
		if _, dup := d.byName[key]; dup {
			continue
		}
		d.byName[key] = p
		d.players = append(d.players, p)
		added++
	}
	return added
}

// Len returns the number of players in the directory.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.players)
}

// Find looks a player up by full name, ignoring case, accents and extra
// whitespace.
func (d *Directory) Find(name string) (store.Player, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.byName[foldName(name)]
	return p, ok
}

// Lookup is Find with a *PlayerNotFoundError on a miss.
func (d *Directory) Lookup(name string) (store.Player, error) {
	if p, ok := d.Find(name); ok {
		return p, nil
	}
	return store.Player{}, &PlayerNotFoundError{Name: name, Suggestion: d.suggest(name)}
}

// Search returns players whose name contains query, active players first.
func (d *Directory) Search(query string, limit int) []store.Player {
	q := foldName(query)
	if q == "" {
		return []store.Player{}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	matches := []store.Player{}
	for _, p := range d.players {
		if strings.Contains(foldName(p.FullName), q) {
			matches = append(matches, p)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].IsActive && !matches[j].IsActive
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func (d *Directory) suggest(name string) string {
	target := foldName(name)
	if target == "" {
		return ""
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	best, bestScore := "", 0.0
	for _, p := range d.players {
		score := matchr.JaroWinkler(target, foldName(p.FullName), false)
		if score > bestScore {
			best, bestScore = p.FullName, score
		}
	}
	if bestScore < minSuggestionScore {
		return ""
	}
	return best
}

// foldName lowercases, strips diacritics and collapses whitespace.
func foldName(s string) string {
	// transformer chains keep state, so each call builds its own
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
